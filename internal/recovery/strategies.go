package recovery

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/dotcommander/remedy/internal/models"
)

// recoverFileAccess retries opening the target for read; when that
// fails it accepts the sibling backup as a degraded fallback.
func (d *Dispatcher) recoverFileAccess(ctx context.Context, path string) Outcome {
	backup := path + ".backup"

	outcome := OutcomeFailed
	err := d.policy.run(ctx, func() error {
		if readable(path) {
			outcome = OutcomeSuccess
			return nil
		}
		if readable(backup) {
			outcome = OutcomePartial
			return nil
		}
		return fmt.Errorf("%w: %s unreadable", ErrProbe, path)
	})
	if err != nil {
		return OutcomeFailed
	}
	return outcome
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// recoverMemory runs cleanup once up front, then retries the
// safety-check + trial-allocation gate. There is no partial state.
func (d *Dispatcher) recoverMemory(ctx context.Context, cleanup func()) Outcome {
	cleanup()

	err := d.policy.run(ctx, func() error {
		if !d.memory.WithinSafeThreshold() {
			return fmt.Errorf("%w: resources still constrained", ErrProbe)
		}
		if allocErr := d.trialAlloc(); allocErr != nil {
			return fmt.Errorf("%w: trial allocation: %w", ErrProbe, allocErr)
		}
		return nil
	})
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeSuccess
}

// recoverNullReference only needs the resource gate; the fault itself
// is already gone once the caller reaches us.
func (d *Dispatcher) recoverNullReference(ctx context.Context) Outcome {
	err := d.policy.run(ctx, func() error {
		if !d.memory.WithinSafeThreshold() {
			return fmt.Errorf("%w: resource verification failed", ErrProbe)
		}
		return nil
	})
	if err != nil {
		return OutcomeFailed
	}
	d.recorder.Record(Entry{
		Event:   models.EventKindRecoveryNote,
		Kind:    KindNullReference,
		Message: "Recovered from null reference fault",
	})
	return OutcomeSuccess
}

// recoverDevice walks the candidate list in priority order. Within each
// candidate's retry budget an accessibility probe is tried first, then
// a reset; the first candidate that responds wins and later candidates
// are never probed.
func (d *Dispatcher) recoverDevice(ctx context.Context) Outcome {
	for _, path := range d.devicePaths {
		err := d.policy.run(ctx, func() error {
			if d.devices.Accessible(path) {
				return nil
			}
			if d.devices.Reset(path) {
				d.recorder.Record(Entry{
					Event:   models.EventKindDeviceReset,
					Kind:    KindDevice,
					Message: fmt.Sprintf("Device %s reset successful", path),
				})
				return nil
			}
			return fmt.Errorf("%w: device %s unavailable", ErrProbe, path)
		})
		if err == nil {
			return OutcomeSuccess
		}
		if ctx.Err() != nil {
			break
		}
	}

	d.recorder.Record(Entry{
		Event:   models.EventKindProbeFailure,
		Kind:    KindDevice,
		Message: "Failed to recover device after multiple attempts",
	})
	return OutcomeFailed
}

// recoverDeviceBusy waits for the contended device with a doubled
// delay, force-releasing holders between attempts when allowed.
func (d *Dispatcher) recoverDeviceBusy(ctx context.Context) Outcome {
	err := d.policy.Doubled().run(ctx, func() error {
		load, loadErr := d.load.OneMinute()
		loadOK := loadErr == nil && load < loadThreshold
		if loadOK && d.memory.WithinSafeThreshold() {
			return nil
		}

		if relErr := d.breaker.ForceRelease(d.contendedDevice); relErr == nil {
			d.recorder.Record(Entry{
				Event:   models.EventKindForcedRelease,
				Kind:    KindDeviceBusy,
				Message: fmt.Sprintf("Forced release of %s holders", d.contendedDevice),
			})
		}
		if loadErr != nil {
			return fmt.Errorf("%w: %w", ErrProbe, loadErr)
		}
		if !loadOK {
			return fmt.Errorf("%w: device remains busy (load %.2f)", ErrProbe, load)
		}
		return fmt.Errorf("%w: load %.2f acceptable but resources still constrained", ErrProbe, load)
	})
	if err != nil {
		d.recorder.Record(Entry{
			Event:   models.EventKindProbeFailure,
			Kind:    KindDeviceBusy,
			Message: fmt.Sprintf("Device busy recovery exhausted: %v", err),
		})
		return OutcomeFailed
	}
	return OutcomeSuccess
}

// recoverTextBusy retries a non-blocking read-write open. Any failure
// other than ETXTBSY is outside this strategy's remit and aborts the
// loop immediately.
func (d *Dispatcher) recoverTextBusy(ctx context.Context, path string) Outcome {
	err := d.policy.run(ctx, func() error {
		fd, openErr := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if openErr == nil {
			_ = unix.Close(fd)
			return nil
		}
		if errors.Is(openErr, unix.ETXTBSY) {
			return fmt.Errorf("%w: %s still busy", ErrProbe, path)
		}
		return Abort(fmt.Errorf("%w: open %s: %w", ErrUnexpectedCondition, path, openErr))
	})
	if err != nil {
		if errors.Is(err, ErrUnexpectedCondition) {
			d.recorder.Record(Entry{
				Event:   models.EventKindProbeFailure,
				Kind:    KindTextBusy,
				Message: fmt.Sprintf("Unexpected error while waiting on %s: %v", path, err),
				AuxCode: errnoOf(err),
			})
		}
		return OutcomeFailed
	}
	return OutcomeSuccess
}

func errnoOf(err error) int64 {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int64(errno)
	}
	return 0
}
