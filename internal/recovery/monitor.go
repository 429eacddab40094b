package recovery

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// MemoryProber reports whether the process is within a safe share of
// system memory. Implemented by ResourceMonitor; faked in tests.
type MemoryProber interface {
	// UsageFraction returns peak process RSS divided by total system memory.
	UsageFraction() (float64, error)
	// WithinSafeThreshold is the gate every strategy uses. A probe
	// failure reads as unsafe (fail-closed).
	WithinSafeThreshold() bool
}

const (
	// memoryThreshold is the usage fraction above which the process is
	// considered unsafe to continue allocating.
	memoryThreshold = 0.9

	// fallbackSystemMemory is assumed when total memory cannot be read.
	fallbackSystemMemory = 8 << 30 // 8 GiB

	defaultMeminfoPath = "/proc/meminfo"
)

// ResourceMonitor derives a fresh ResourceSnapshot on every probe;
// nothing is cached because system state changes between probes.
type ResourceMonitor struct {
	// MeminfoPath is overridable for tests; defaults to /proc/meminfo.
	MeminfoPath string
}

// NewResourceMonitor returns a monitor reading the live /proc/meminfo.
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{MeminfoPath: defaultMeminfoPath}
}

// ResourceSnapshot pairs process peak RSS with total system memory.
type ResourceSnapshot struct {
	ProcessResidentMemory uint64 `json:"process_resident_memory"`
	TotalSystemMemory     uint64 `json:"total_system_memory"`
}

// Snapshot reads the process peak resident set via getrusage alongside
// total system memory (with the 8 GiB fallback applied).
func (m *ResourceMonitor) Snapshot() (ResourceSnapshot, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return ResourceSnapshot{}, fmt.Errorf("%w: getrusage: %w", ErrProbe, err)
	}

	// ru_maxrss is reported in KiB on Linux.
	snap := ResourceSnapshot{ProcessResidentMemory: uint64(ru.Maxrss) * 1024}
	snap.TotalSystemMemory = m.totalSystemMemory()
	if snap.TotalSystemMemory == 0 {
		snap.TotalSystemMemory = fallbackSystemMemory
	}
	return snap, nil
}

// UsageFraction divides process peak RSS by total system memory.
func (m *ResourceMonitor) UsageFraction() (float64, error) {
	snap, err := m.Snapshot()
	if err != nil {
		return 0, err
	}
	return float64(snap.ProcessResidentMemory) / float64(snap.TotalSystemMemory), nil
}

// WithinSafeThreshold reports whether usage is under the threshold.
// An unreadable probe counts as unsafe.
func (m *ResourceMonitor) WithinSafeThreshold() bool {
	frac, err := m.UsageFraction()
	if err != nil {
		return false
	}
	return frac < memoryThreshold
}

// totalSystemMemory parses MemTotal from /proc/meminfo. Returns 0 when
// the file is missing or malformed; the caller applies the fallback.
func (m *ResourceMonitor) totalSystemMemory() uint64 {
	path := m.MeminfoPath
	if path == "" {
		path = defaultMeminfoPath
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}
