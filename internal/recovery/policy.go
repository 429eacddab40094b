package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a strategy's retry loop: how many attempts, and how
// long to sleep between failed attempts.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy is the shared retry budget: 3 attempts, 2s apart.
// The device-busy strategy doubles the delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Doubled returns the same budget with twice the inter-attempt delay.
func (p Policy) Doubled() Policy {
	return Policy{MaxAttempts: p.MaxAttempts, Delay: p.Delay * 2}
}

// run executes attempt up to p.MaxAttempts times with a constant delay
// between failures. Wrapping an error in backoff.Permanent (or returning
// a permanent error via Abort) stops the loop immediately; context
// cancellation aborts the sleep without waiting out the budget.
//
// Returns nil when some attempt succeeded, ErrRetryExhausted (wrapping
// the last attempt error) when the budget ran out, the permanent error
// for short-circuits, or ctx.Err() on cancellation.
func (p Policy) run(ctx context.Context, attempt func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)),
		ctx,
	)
	err := backoff.Retry(func() error {
		err := attempt()
		if err != nil {
			lastErr = err
		}
		return err
	}, b)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// backoff hands permanent errors back unwrapped; everything else here
	// means the budget was consumed.
	var perm *backoff.PermanentError
	if errors.As(lastErr, &perm) {
		return err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, err)
}

// Abort marks err as permanent so the retry loop stops immediately.
func Abort(err error) error {
	return backoff.Permanent(err)
}
