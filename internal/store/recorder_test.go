package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/remedy/internal/models"
	"github.com/dotcommander/remedy/internal/recovery"
)

func TestEventRecorderPersistsEntries(t *testing.T) {
	db := setupTestDB(t)

	rec := EventRecorder{DB: db}
	rec.Record(recovery.Entry{
		Event:   models.EventKindRecoveryOutcome,
		Kind:    recovery.KindTextBusy,
		Outcome: recovery.OutcomeFailed,
		Message: "Recovery failed for error kind text_busy",
		AuxCode: 26,
	})

	events, err := ListEvents(db, ListEventsParams{Kind: models.EventKindRecoveryOutcome})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "text_busy", events[0].ErrorKind)
	require.Equal(t, "failed", events[0].Outcome)
	require.Equal(t, int64(26), events[0].AuxCode)
}

func TestEventRecorderSwallowsFailures(t *testing.T) {
	db := setupTestDB(t)

	// Invalid payload (empty message) must not panic or surface.
	rec := EventRecorder{DB: db}
	rec.Record(recovery.Entry{Event: models.EventKindCleanup})

	count, err := CountEvents(db, "")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEventRecorderNilDBIsNoop(t *testing.T) {
	EventRecorder{}.Record(recovery.Entry{Event: models.EventKindCleanup, Message: "x"})
}
