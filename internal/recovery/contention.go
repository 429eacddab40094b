package recovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// ContentionBreaker forcibly releases a contended resource, typically
// by terminating the processes holding it open.
type ContentionBreaker interface {
	ForceRelease(path string) error
}

// ErrDestructiveDisabled is returned when a forced release is requested
// without the destructive opt-in.
var ErrDestructiveDisabled = errors.New("destructive actions disabled")

// ProcScanBreaker walks /proc/<pid>/fd looking for holders of a path
// and kills them. The in-process equivalent of `fuser -k`.
type ProcScanBreaker struct {
	// Destructive must be set or ForceRelease refuses to signal anyone.
	Destructive bool
}

// ForceRelease sends SIGKILL to every process (other than this one)
// holding path open. Unreadable /proc entries are skipped.
func (b ProcScanBreaker) ForceRelease(path string) error {
	if !b.Destructive {
		return ErrDestructiveDisabled
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Missing device: nothing is holding it.
		return nil
	}

	procs, err := os.ReadDir("/proc")
	if err != nil {
		return fmt.Errorf("scan /proc: %w", err)
	}

	self := os.Getpid()
	for _, p := range procs {
		pid, err := strconv.Atoi(p.Name())
		if err != nil || pid == self {
			continue
		}
		if !holdsPath(pid, target) {
			continue
		}
		_ = unix.Kill(pid, unix.SIGKILL)
	}
	return nil
}

func holdsPath(pid int, target string) bool {
	fdDir := filepath.Join("/proc", strconv.Itoa(pid), "fd")
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		link, err := os.Readlink(filepath.Join(fdDir, e.Name()))
		if err != nil {
			continue
		}
		if link == target {
			return true
		}
	}
	return false
}
