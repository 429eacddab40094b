package recovery

import (
	"os"

	"golang.org/x/sys/unix"
)

// DeviceProber checks device health and issues best-effort resets.
// Implemented by TTYProbe; faked in tests.
type DeviceProber interface {
	// Accessible reports whether path exists and can be opened
	// read-only without blocking. The descriptor is never retained.
	Accessible(path string) bool
	// Reset opens path read-write and toggles exclusive-access mode,
	// a best-effort signal to the driver to release stuck locks.
	// Returns whether the open succeeded; it does not guarantee the
	// device is actually healthier.
	Reset(path string) bool
}

// TTYProbe probes real device nodes. Every call opens, acts, and
// closes in one operation; no handle outlives the probe.
type TTYProbe struct{}

func (TTYProbe) Accessible(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	_ = unix.Close(fd)
	return true
}

func (TTYProbe) Reset(path string) bool {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	// Exclusive-then-non-exclusive toggle. Errors are ignored: non-tty
	// nodes (e.g. /dev/null) reject the ioctl but the open still counts.
	_ = unix.IoctlSetInt(fd, unix.TIOCEXCL, 0)
	_ = unix.IoctlSetInt(fd, unix.TIOCNXCL, 0)
	_ = unix.Close(fd)
	return true
}
