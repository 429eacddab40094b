package models

// System event kinds emitted by remedy's store and recovery layers.
const (
	EventKindRecoveryStarted = "recovery_started"
	EventKindRecoveryOutcome = "recovery_outcome"
	EventKindRecoveryNote    = "recovery_note"
	EventKindCleanup         = "cleanup"
	EventKindProbeFailure    = "probe_failure"
	EventKindDeviceReset     = "device_reset"
	EventKindForcedRelease   = "forced_release"
	EventKindEventsPruned    = "events_pruned"
)
