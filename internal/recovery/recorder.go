package recovery

import "log/slog"

// Entry is one record handed to the logging sink.
type Entry struct {
	// Event names what happened (models.EventKind* constants).
	Event string
	// Kind is the classified fault being recovered, if any.
	Kind Kind
	// Outcome is set on dispatch summary entries.
	Outcome Outcome
	Message string
	// AuxCode carries an auxiliary numeric code, typically an errno.
	AuxCode int64
}

// Recorder is the logging-sink collaborator. Record is fire-and-forget:
// implementations swallow their own failures and must never panic back
// into the dispatcher.
type Recorder interface {
	Record(e Entry)
}

// SlogRecorder writes entries to a structured logger.
type SlogRecorder struct {
	Logger *slog.Logger
}

func (r SlogRecorder) Record(e Entry) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"event", e.Event}
	if e.Kind != "" {
		attrs = append(attrs, "error_kind", string(e.Kind))
	}
	if e.Outcome != "" {
		attrs = append(attrs, "outcome", string(e.Outcome))
	}
	if e.AuxCode != 0 {
		attrs = append(attrs, "aux_code", e.AuxCode)
	}
	logger.Info(e.Message, attrs...)
}

// NopRecorder discards all entries.
type NopRecorder struct{}

func (NopRecorder) Record(Entry) {}

// MultiRecorder fans an entry out to several sinks.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(e Entry) {
	for _, r := range m {
		r.Record(e)
	}
}
