package models

import (
	"encoding/json"
	"time"
)

// Event is one row of the recovery event log. Every probe failure,
// cleanup pass, and dispatch outcome lands here.
type Event struct {
	ID int64 `json:"id"`
	// Kind is one of the EventKind* constants defined in event_kinds.go.
	Kind string `json:"kind"`
	// ErrorKind is the classified fault this event relates to
	// ("memory", "file_access", ...); empty for events not tied to a fault.
	ErrorKind string `json:"error_kind,omitempty"`
	// Outcome is set on dispatch summary events: success, partial, failed.
	Outcome string `json:"outcome,omitempty"`
	Message string `json:"message"`
	// AuxCode carries the auxiliary numeric code from the recording call,
	// typically an errno. Zero means none.
	AuxCode   int64           `json:"aux_code"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}
