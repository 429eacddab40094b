package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/remedy/internal/recovery"
)

type stubLoad struct {
	load float64
	err  error
}

func (s stubLoad) OneMinute() (float64, error) { return s.load, s.err }

func TestBuildStatusReportsZeroLoadAsAvailable(t *testing.T) {
	r, err := buildStatus(recovery.NewResourceMonitor(), stubLoad{load: 0})
	require.NoError(t, err)

	require.True(t, r.LoadAverageAvailable)
	require.Zero(t, r.LoadAverage1m)
	require.Positive(t, r.ProcessResidentMemory)
}

func TestBuildStatusMarksFailedLoadProbeUnavailable(t *testing.T) {
	r, err := buildStatus(recovery.NewResourceMonitor(), stubLoad{err: errors.New("no loadavg")})
	require.NoError(t, err)

	require.False(t, r.LoadAverageAvailable)
	require.Zero(t, r.LoadAverage1m)
}
