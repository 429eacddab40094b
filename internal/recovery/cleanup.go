package recovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dotcommander/remedy/internal/models"
)

// Cleaner performs last-resort reclamation. Run must be idempotent:
// resources that are already gone are skipped, not errors.
type Cleaner interface {
	Run() error
}

// DefaultTempPrefix is the reserved path prefix for temporary artifacts
// created by this subsystem. Cleanup only ever deletes under it.
const DefaultTempPrefix = "/tmp/remedy_"

// SystemCleaner reclaims real OS resources. The process-wide parts
// (closing descriptors >= 3, removing SysV shared-memory segments) are
// destructive and only run when Destructive is set; temp artifact
// removal under the reserved prefix always runs.
type SystemCleaner struct {
	Destructive bool
	TempPrefix  string
	Recorder    Recorder

	mu sync.Mutex
}

// Run executes one cleanup pass and records a cleanup event.
// Safe to call repeatedly and from concurrent dispatchers.
func (c *SystemCleaner) Run() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var closedFDs, removedShm int
	if c.Destructive {
		closedFDs = closeStrayFDs()
		removedShm = releaseOwnedShm()
	}
	removedTemp, err := c.removeTempArtifacts()

	if c.Recorder != nil {
		c.Recorder.Record(Entry{
			Event: models.EventKindCleanup,
			Message: fmt.Sprintf("System resources cleanup performed (fds=%d shm=%d temp=%d destructive=%t)",
				closedFDs, removedShm, removedTemp, c.Destructive),
		})
	}
	return err
}

// closeStrayFDs closes every descriptor above stdin/stdout/stderr.
// Returns how many were closed.
func closeStrayFDs() int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0
	}

	// Collect first: the ReadDir handle itself occupies a descriptor
	// that disappears between listing and closing.
	fds := make([]int, 0, len(entries))
	for _, e := range entries {
		fd, err := strconv.Atoi(e.Name())
		if err != nil || fd <= 2 {
			continue
		}
		fds = append(fds, fd)
	}

	closed := 0
	for _, fd := range fds {
		if unix.Close(fd) == nil {
			closed++
		}
	}
	return closed
}

// releaseOwnedShm removes SysV shared-memory segments created by this
// process. Best-effort: unreadable or foreign segments are skipped.
func releaseOwnedShm() int {
	f, err := os.Open("/proc/sysvipc/shm")
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()

	pid := os.Getpid()
	removed := 0
	scanner := bufio.NewScanner(f)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// key shmid perms size cpid lpid nattch uid ...
		if len(fields) < 5 {
			continue
		}
		shmid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		cpid, err := strconv.Atoi(fields[4])
		if err != nil || cpid != pid {
			continue
		}
		if _, err := unix.SysvShmCtl(shmid, unix.IPC_RMID, nil); err == nil {
			removed++
		}
	}
	return removed
}

// removeTempArtifacts deletes files under the reserved temp prefix.
func (c *SystemCleaner) removeTempArtifacts() (int, error) {
	prefix := c.TempPrefix
	if prefix == "" {
		prefix = DefaultTempPrefix
	}
	matches, err := filepath.Glob(prefix + "*")
	if err != nil {
		return 0, fmt.Errorf("glob temp artifacts: %w", err)
	}

	removed := 0
	for _, m := range matches {
		if rmErr := os.RemoveAll(m); rmErr == nil {
			removed++
		}
	}
	return removed, nil
}
