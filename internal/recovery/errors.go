package recovery

import "errors"

// Sentinel errors folded into the retry loop. None of them escapes the
// dispatcher boundary; callers only ever see an Outcome.
var (
	// ErrProbe means resource or device state could not be read.
	ErrProbe = errors.New("probe failed")

	// ErrRetryExhausted means the retry budget was consumed without success.
	ErrRetryExhausted = errors.New("retry budget exhausted")

	// ErrUnexpectedCondition means a strategy hit an error reason outside
	// its expected set (e.g. the text-busy strategy seeing a non-busy errno).
	// It short-circuits the retry loop.
	ErrUnexpectedCondition = errors.New("unexpected condition")
)
