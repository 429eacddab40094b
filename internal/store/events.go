package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dotcommander/remedy/internal/models"
)

// Event payload size constraints enforced by ValidateEventPayload.
const (
	MaxEventKindLength     = 128
	MaxEventMessageLength  = 4096
	MaxEventMetadataLength = 16384
)

// ValidateEventPayload enforces event payload constraints for durability and safety.
func ValidateEventPayload(kind, message, metadata string) error {
	kind = strings.TrimSpace(kind)
	message = strings.TrimSpace(message)

	if kind == "" {
		return errors.New("event kind is required")
	}
	if len(kind) > MaxEventKindLength {
		return fmt.Errorf("event kind exceeds max length (%d)", MaxEventKindLength)
	}
	if message == "" {
		return errors.New("event message is required")
	}
	if len(message) > MaxEventMessageLength {
		return fmt.Errorf("event message exceeds max length (%d)", MaxEventMessageLength)
	}
	if metadata != "" {
		if len(metadata) > MaxEventMetadataLength {
			return fmt.Errorf("event metadata exceeds max length (%d)", MaxEventMetadataLength)
		}
		if !json.Valid([]byte(metadata)) {
			return errors.New("event metadata must be valid JSON")
		}
	}

	return nil
}

// InsertEventParams describes one recovery log entry.
type InsertEventParams struct {
	Kind      string
	ErrorKind string
	Outcome   string
	Message   string
	AuxCode   int64
	Metadata  string
}

// InsertEvent validates and appends an event to the recovery log.
func InsertEvent(db *sql.DB, p InsertEventParams) (int64, error) {
	if err := ValidateEventPayload(p.Kind, p.Message, p.Metadata); err != nil {
		return 0, err
	}

	meta := interface{}(nil)
	if p.Metadata != "" {
		meta = p.Metadata
	}

	var eventID int64
	err := RetryWithBackoff(func() error {
		result, err := db.ExecContext(context.Background(), `
			INSERT INTO events (kind, error_kind, outcome, message, aux_code, metadata)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Kind, p.ErrorKind, p.Outcome, p.Message, p.AuxCode, meta)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		eventID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return eventID, nil
}

// ListEventsParams controls filtering for ListEvents.
type ListEventsParams struct {
	Kind      string
	ErrorKind string
	SinceID   int64
	Limit     int
	// Asc sorts oldest first; the default is newest first.
	Asc bool
}

// ListEvents returns recovery log entries, newest first by default.
func ListEvents(db *sql.DB, p ListEventsParams) ([]*models.Event, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}

	query := `
		SELECT id, kind, error_kind, outcome, message, aux_code, metadata, created_at
		FROM events
		WHERE 1=1
	`
	args := []any{}
	if p.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, p.Kind)
	}
	if p.ErrorKind != "" {
		query += ` AND error_kind = ?`
		args = append(args, p.ErrorKind)
	}
	if p.SinceID > 0 {
		query += ` AND id > ?`
		args = append(args, p.SinceID)
	}
	if p.Asc {
		query += ` ORDER BY id ASC`
	} else {
		query += ` ORDER BY id DESC`
	}
	query += ` LIMIT ?`
	args = append(args, p.Limit)

	var events []*models.Event
	err := RetryWithBackoff(func() error {
		rows, err := db.QueryContext(context.Background(), query, args...)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		defer func() { _ = rows.Close() }()

		events, err = scanEventRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// scanEventRows reads all rows from an events query result into a slice.
func scanEventRows(rows *sql.Rows) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	for rows.Next() {
		var ev models.Event
		var metadata sql.NullString
		if err := rows.Scan(
			&ev.ID,
			&ev.Kind,
			&ev.ErrorKind,
			&ev.Outcome,
			&ev.Message,
			&ev.AuxCode,
			&metadata,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if metadata.Valid {
			ev.Metadata = json.RawMessage(metadata.String)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// CountEvents returns the number of log entries, optionally filtered by kind.
func CountEvents(db *sql.DB, kind string) (int64, error) {
	var count int64
	err := RetryWithBackoff(func() error {
		query := `SELECT COUNT(*) FROM events`
		args := []any{}
		if kind != "" {
			query += ` WHERE kind = ?`
			args = append(args, kind)
		}
		return db.QueryRowContext(context.Background(), query, args...).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// PruneEvents deletes log entries older than the cutoff and appends a
// single events_pruned entry describing what was removed.
func PruneEvents(db *sql.DB, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("older-than must be > 0")
	}
	cutoff := time.Now().UTC().Add(-olderThan)

	var pruned int64
	err := RetryWithBackoff(func() error {
		res, err := db.ExecContext(context.Background(), `
			DELETE FROM events WHERE created_at < ? AND kind != ?
		`, cutoff, models.EventKindEventsPruned)
		if err != nil {
			return fmt.Errorf("failed to prune events: %w", err)
		}
		pruned, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count pruned events: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if pruned > 0 {
		meta, err := json.Marshal(map[string]any{
			"pruned": pruned,
			"cutoff": cutoff.Format(time.RFC3339),
		})
		if err != nil {
			return pruned, fmt.Errorf("failed to marshal prune metadata: %w", err)
		}
		if _, err := InsertEvent(db, InsertEventParams{
			Kind:     models.EventKindEventsPruned,
			Message:  fmt.Sprintf("Pruned %d events older than %s", pruned, olderThan),
			Metadata: string(meta),
		}); err != nil {
			return pruned, err
		}
	}

	return pruned, nil
}
