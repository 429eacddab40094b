package recovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForceReleaseRefusesWithoutOptIn(t *testing.T) {
	err := ProcScanBreaker{}.ForceRelease("/dev/null")
	require.ErrorIs(t, err, ErrDestructiveDisabled)
}

func TestForceReleaseMissingPathIsNoop(t *testing.T) {
	err := ProcScanBreaker{Destructive: true}.ForceRelease(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
}

func TestForceReleaseSkipsSelf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "held")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// The only holder is this process, which is skipped; nothing dies.
	require.NoError(t, ProcScanBreaker{Destructive: true}.ForceRelease(path))

	_, err = f.WriteString("alive")
	require.NoError(t, err)
}
