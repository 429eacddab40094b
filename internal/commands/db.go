package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/remedy/internal/app"
	"github.com/dotcommander/remedy/internal/output"
	"github.com/dotcommander/remedy/internal/store"
)

func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Event log database utilities",
	}

	cmd.AddCommand(newDBPathCmd())
	cmd.AddCommand(newDBSchemaCmd())
	return cmd
}

func newDBPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.GetDBPath()
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Path string `json:"path"`
			}
			return output.PrintSuccess(resp{Path: path})
		},
	}
}

func newDBSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print current and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var current, latest int64
			if err := withDB(func(db *DB) error {
				var err error
				current, latest, err = store.SchemaVersion(db)
				return err
			}); err != nil {
				return err
			}

			type resp struct {
				Current int64 `json:"current"`
				Latest  int64 `json:"latest"`
			}
			return output.PrintSuccess(resp{Current: current, Latest: latest})
		},
	}
}
