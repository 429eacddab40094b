package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/remedy/internal/models"
	"github.com/dotcommander/remedy/internal/output"
	"github.com/dotcommander/remedy/internal/store"
)

func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the recovery event log",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsPruneCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		kind      string
		errorKind string
		limit     int
		since     int64
		asc       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recovery events (filterable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []*models.Event
			if err := withDB(func(db *DB) error {
				ev, err := store.ListEvents(db, store.ListEventsParams{
					Kind:      kind,
					ErrorKind: errorKind,
					SinceID:   since,
					Limit:     limit,
					Asc:       asc,
				})
				if err != nil {
					return err
				}
				events = ev
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Kind      string          `json:"kind,omitempty"`
				ErrorKind string          `json:"error_kind,omitempty"`
				Since     int64           `json:"since_id,omitempty"`
				Count     int             `json:"count"`
				Events    []*models.Event `json:"events"`
			}
			return output.PrintSuccess(resp{
				Kind:      kind,
				ErrorKind: errorKind,
				Since:     since,
				Count:     len(events),
				Events:    events,
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by event kind")
	cmd.Flags().StringVar(&errorKind, "error-kind", "", "Filter by classified error kind")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events (<= 1000)")
	cmd.Flags().Int64Var(&since, "since-id", 0, "Only events with id > since-id")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort oldest first (default newest first)")

	return cmd
}

func newEventsPruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete events older than a retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var pruned int64
			if err := withDB(func(db *DB) error {
				n, err := store.PruneEvents(db, olderThan)
				if err != nil {
					return err
				}
				pruned = n
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Pruned    int64  `json:"pruned"`
				OlderThan string `json:"older_than"`
			}
			return output.PrintSuccess(resp{Pruned: pruned, OlderThan: olderThan.String()})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Retention window (e.g. 720h)")
	return cmd
}
