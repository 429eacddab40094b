package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dotcommander/remedy/internal/app"
	"github.com/dotcommander/remedy/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	root := &cobra.Command{
		Use:           "remedy",
		Short:         "Error-recovery orchestrator for classified system faults",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			setupLogger(debug)

			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --db-path into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}

			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override event log database path")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.Flags().BoolP("version", "v", false, "version for remedy")

	root.AddCommand(NewRecoverCmd())
	root.AddCommand(NewKindsCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewCleanupCmd())
	root.AddCommand(NewEventsCmd())
	root.AddCommand(NewDBCmd())

	setupLogger(false)

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// setupLogger installs the default slog handler: colorized tint output
// on a terminal, JSON otherwise.
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
