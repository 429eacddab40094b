package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/remedy/internal/app"
	"github.com/dotcommander/remedy/internal/output"
	"github.com/dotcommander/remedy/internal/recovery"
	"github.com/dotcommander/remedy/internal/store"
)

func NewCleanupCmd() *cobra.Command {
	var destructive bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Run the last-resort resource cleanup pass",
		Long: `Remove temporary artifacts under the reserved prefix and, with
--destructive, close stray file descriptors and release shared-memory
segments owned by this process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.EffectiveRecoverySettings()
			if cmd.Flags().Changed("destructive") {
				settings.Destructive = destructive
			}

			return withDB(func(db *DB) error {
				cleaner := &recovery.SystemCleaner{
					Destructive: settings.Destructive,
					TempPrefix:  settings.TempPrefix,
					Recorder: recovery.MultiRecorder{
						recovery.SlogRecorder{},
						store.EventRecorder{DB: db},
					},
				}
				if err := cleaner.Run(); err != nil {
					return err
				}

				type resp struct {
					Destructive bool   `json:"destructive"`
					TempPrefix  string `json:"temp_prefix"`
				}
				return output.PrintSuccess(resp{
					Destructive: settings.Destructive,
					TempPrefix:  settings.TempPrefix,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&destructive, "destructive", false, "Allow process-wide destructive cleanup (overrides config)")
	return cmd
}
