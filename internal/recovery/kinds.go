package recovery

import "fmt"

// Kind is the closed classification of an originating fault. It is
// supplied by the caller; remedy does not detect or classify errors.
type Kind string

const (
	KindMemory        Kind = "memory"
	KindFileAccess    Kind = "file_access"
	KindDevice        Kind = "device"
	KindDeviceBusy    Kind = "device_busy"
	KindTextBusy      Kind = "text_busy"
	KindNullReference Kind = "null_reference"
	KindUnknown       Kind = "unknown"
)

// Kinds returns every recoverable kind, in documentation order.
// KindUnknown is excluded: it has no strategy.
func Kinds() []Kind {
	return []Kind{
		KindMemory,
		KindFileAccess,
		KindDevice,
		KindDeviceBusy,
		KindTextBusy,
		KindNullReference,
	}
}

// ParseKind maps a CLI/user string onto a Kind. Unrecognized values are
// an error rather than KindUnknown so callers cannot silently dispatch
// a typo into the no-strategy path.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMemory, KindFileAccess, KindDevice, KindDeviceBusy,
		KindTextBusy, KindNullReference, KindUnknown:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown error kind: %q", s)
}

// Outcome is the three-valued result of a remediation attempt.
type Outcome string

const (
	// OutcomeSuccess means the primary remedy worked.
	OutcomeSuccess Outcome = "success"
	// OutcomePartial means a degraded fallback (e.g. a backup file)
	// satisfied the request.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means all remedies were exhausted.
	OutcomeFailed Outcome = "failed"
)

// Summary renders the human-readable dispatch summary for an outcome.
func (o Outcome) Summary(kind Kind) string {
	word := "failed"
	switch o {
	case OutcomeSuccess:
		word = "successful"
	case OutcomePartial:
		word = "partial"
	}
	return fmt.Sprintf("Recovery %s for error kind %s", word, kind)
}
