package store

import (
	"database/sql"
	"log/slog"

	"github.com/dotcommander/remedy/internal/recovery"
)

// EventRecorder persists recovery entries to the event log. Record is
// fire-and-forget per the sink contract: insert failures are logged and
// swallowed, never surfaced to the dispatcher.
type EventRecorder struct {
	DB *sql.DB
}

func (r EventRecorder) Record(e recovery.Entry) {
	if r.DB == nil {
		return
	}
	_, err := InsertEvent(r.DB, InsertEventParams{
		Kind:      e.Event,
		ErrorKind: string(e.Kind),
		Outcome:   string(e.Outcome),
		Message:   e.Message,
		AuxCode:   e.AuxCode,
	})
	if err != nil {
		slog.Warn("failed to record recovery event", "event", e.Event, "error", err.Error())
	}
}
