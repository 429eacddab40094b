package recovery

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadProber reads the 1-minute system load average.
type LoadProber interface {
	OneMinute() (float64, error)
}

// loadThreshold is the 1-minute load average under which a contended
// device is considered available again.
const loadThreshold = 0.8

const defaultLoadavgPath = "/proc/loadavg"

// ProcLoadAvg reads the load average from /proc/loadavg.
type ProcLoadAvg struct {
	// Path is overridable for tests; defaults to /proc/loadavg.
	Path string
}

func (p ProcLoadAvg) OneMinute() (float64, error) {
	path := p.Path
	if path == "" {
		path = defaultLoadavgPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: read loadavg: %w", ErrProbe, err)
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty loadavg", ErrProbe)
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse loadavg: %w", ErrProbe, err)
	}
	return load, nil
}
