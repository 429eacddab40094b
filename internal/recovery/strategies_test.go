package recovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/remedy/internal/models"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestFileAccessSuccessOnReadableTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.txt")
	writeFile(t, target)

	d := New(Config{Policy: fastPolicy(), TargetPath: target, Recorder: &captureRecorder{}})
	outcome := d.recoverFileAccess(context.Background(), target)

	require.Equal(t, OutcomeSuccess, outcome)
}

func TestFileAccessPartialViaBackup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.txt")
	writeFile(t, target+".backup")

	d := New(Config{Policy: fastPolicy(), Recorder: &captureRecorder{}})
	outcome := d.recoverFileAccess(context.Background(), target)

	require.Equal(t, OutcomePartial, outcome)
}

func TestFileAccessFailedWhenNeitherExists(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.txt")

	d := New(Config{Policy: fastPolicy(), Recorder: &captureRecorder{}})
	outcome := d.recoverFileAccess(context.Background(), target)

	require.Equal(t, OutcomeFailed, outcome)
}

func TestDeviceFirstHealthyCandidateWins(t *testing.T) {
	devices := &fakeDevices{accessible: map[string]bool{"/dev/c": true}}
	d := New(Config{
		Policy:      fastPolicy(),
		DevicePaths: []string{"/dev/a", "/dev/b", "/dev/c", "/dev/d"},
		Devices:     devices,
		Recorder:    &captureRecorder{},
	})

	outcome := d.recoverDevice(context.Background())

	require.Equal(t, OutcomeSuccess, outcome)
	require.Equal(t, 3, devices.probes["/dev/a"], "first candidate exhausts its budget")
	require.Equal(t, 3, devices.probes["/dev/b"])
	require.Equal(t, 1, devices.probes["/dev/c"], "winning candidate succeeds on first probe")
	require.Zero(t, devices.probes["/dev/d"], "no probes after the first success")
}

func TestDeviceResetCountsAsRecovery(t *testing.T) {
	devices := &fakeDevices{resettable: map[string]bool{"/dev/a": true}}
	d := New(Config{
		Policy:      fastPolicy(),
		DevicePaths: []string{"/dev/a"},
		Devices:     devices,
		Recorder:    &captureRecorder{},
	})

	outcome := d.recoverDevice(context.Background())

	require.Equal(t, OutcomeSuccess, outcome)
}

func TestDeviceBusyAttemptSpacingUsesDoubledDelay(t *testing.T) {
	base := 30 * time.Millisecond
	breaker := &fakeBreaker{}
	d := New(Config{
		Policy:   Policy{MaxAttempts: 3, Delay: base},
		Memory:   &fakeMemory{safeSeq: []bool{true}},
		Load:     &fakeLoad{loads: []float64{9.9, 9.9, 0.1}},
		Breaker:  breaker,
		Recorder: &captureRecorder{},
	})

	start := time.Now()
	outcome := d.recoverDeviceBusy(context.Background())
	elapsed := time.Since(start)

	require.Equal(t, OutcomeSuccess, outcome)
	// Two failed attempts, each followed by the doubled delay.
	require.GreaterOrEqual(t, elapsed, 2*2*base)
	require.Equal(t, 2, breaker.calls, "forced release fires on each failed attempt")
}

func TestDeviceBusyFailsWhenLoadNeverSettles(t *testing.T) {
	d := New(Config{
		Policy:   fastPolicy(),
		Memory:   &fakeMemory{safeSeq: []bool{true}},
		Load:     &fakeLoad{loads: []float64{9.9}},
		Breaker:  &fakeBreaker{},
		Recorder: &captureRecorder{},
	})

	require.Equal(t, OutcomeFailed, d.recoverDeviceBusy(context.Background()))
}

func TestDeviceBusyReportsFailingGate(t *testing.T) {
	t.Run("load stays high", func(t *testing.T) {
		rec := &captureRecorder{}
		d := New(Config{
			Policy:   fastPolicy(),
			Memory:   &fakeMemory{safeSeq: []bool{true}},
			Load:     &fakeLoad{loads: []float64{9.9}},
			Breaker:  &fakeBreaker{},
			Recorder: rec,
		})

		require.Equal(t, OutcomeFailed, d.recoverDeviceBusy(context.Background()))

		failures := rec.byEvent(models.EventKindProbeFailure)
		require.Len(t, failures, 1)
		require.Contains(t, failures[0].Message, "device remains busy")
	})

	t.Run("load fine but resources constrained", func(t *testing.T) {
		rec := &captureRecorder{}
		d := New(Config{
			Policy:   fastPolicy(),
			Memory:   &fakeMemory{safeSeq: []bool{false}},
			Load:     &fakeLoad{loads: []float64{0.1}},
			Breaker:  &fakeBreaker{},
			Recorder: rec,
		})

		require.Equal(t, OutcomeFailed, d.recoverDeviceBusy(context.Background()))

		failures := rec.byEvent(models.EventKindProbeFailure)
		require.Len(t, failures, 1)
		require.Contains(t, failures[0].Message, "resources still constrained")
	})
}

func TestDeviceBusyCancellationAbortsEarly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d := New(Config{
		Policy:   Policy{MaxAttempts: 3, Delay: 500 * time.Millisecond},
		Memory:   &fakeMemory{safeSeq: []bool{true}},
		Load:     &fakeLoad{loads: []float64{9.9}},
		Breaker:  &fakeBreaker{},
		Recorder: &captureRecorder{},
	})

	start := time.Now()
	outcome := d.recoverDeviceBusy(ctx)

	require.Equal(t, OutcomeFailed, outcome)
	require.Less(t, time.Since(start), 500*time.Millisecond, "cancellation must not wait out the budget")
}

func TestTextBusySuccessOnWritableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program")
	writeFile(t, path)

	d := New(Config{Policy: fastPolicy(), Recorder: &captureRecorder{}})
	outcome := d.recoverTextBusy(context.Background(), path)

	require.Equal(t, OutcomeSuccess, outcome)
}

func TestTextBusyUnexpectedErrorFailsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")

	d := New(Config{
		Policy:   Policy{MaxAttempts: 3, Delay: 250 * time.Millisecond},
		Recorder: &captureRecorder{},
	})

	start := time.Now()
	outcome := d.recoverTextBusy(context.Background(), path)

	require.Equal(t, OutcomeFailed, outcome)
	require.Less(t, time.Since(start), 200*time.Millisecond, "non-busy failure must not incur retry delays")
}

func TestNullReferenceFollowsResourceGate(t *testing.T) {
	safe := New(Config{
		Policy:   fastPolicy(),
		Memory:   &fakeMemory{safeSeq: []bool{true}},
		Recorder: &captureRecorder{},
	})
	require.Equal(t, OutcomeSuccess, safe.recoverNullReference(context.Background()))

	unsafe := New(Config{
		Policy:   fastPolicy(),
		Memory:   &fakeMemory{safeSeq: []bool{false}},
		Recorder: &captureRecorder{},
	})
	require.Equal(t, OutcomeFailed, unsafe.recoverNullReference(context.Background()))
}

func TestNullReferenceRetriesUntilSafe(t *testing.T) {
	mem := &fakeMemory{safeSeq: []bool{false, false, true}}
	d := New(Config{Policy: fastPolicy(), Memory: mem, Recorder: &captureRecorder{}})

	require.Equal(t, OutcomeSuccess, d.recoverNullReference(context.Background()))
	require.Equal(t, 3, mem.calls)
}
