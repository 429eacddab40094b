package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/remedy/internal/app"
	"github.com/dotcommander/remedy/internal/output"
	"github.com/dotcommander/remedy/internal/recovery"
	"github.com/dotcommander/remedy/internal/store"
)

func NewRecoverCmd() *cobra.Command {
	var (
		path        string
		destructive bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "recover <kind>",
		Short: "Run the remediation strategy for a classified error kind",
		Long: `Run the bounded remediation strategy for an already-classified fault.

Kinds: memory, file_access, device, device_busy, text_busy, null_reference.
The outcome is success, partial (a degraded fallback worked), or failed.
On failure the last-resort cleanup pass runs before the command exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recovery.ParseKind(args[0])
			if err != nil {
				return cmdErr(err)
			}
			if needsPath(kind) && path == "" {
				return cmdErr(errors.New("--path is required for file_access and text_busy"))
			}

			settings := app.EffectiveRecoverySettings()
			if cmd.Flags().Changed("destructive") {
				settings.Destructive = destructive
			}

			var outcome recovery.Outcome
			if err := withDB(func(db *DB) error {
				rec := recovery.MultiRecorder{
					recovery.SlogRecorder{},
					store.EventRecorder{DB: db},
				}
				d := recovery.New(recovery.Config{
					Policy: recovery.Policy{
						MaxAttempts: settings.MaxAttempts,
						Delay:       settings.RetryDelay,
					},
					TargetPath:      path,
					DevicePaths:     settings.DevicePaths,
					ContendedDevice: settings.ContendedDevice,
					Cleaner: &recovery.SystemCleaner{
						Destructive: settings.Destructive,
						TempPrefix:  settings.TempPrefix,
						Recorder:    rec,
					},
					Breaker:  recovery.ProcScanBreaker{Destructive: settings.Destructive},
					Recorder: rec,
				})

				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				outcome = d.Recover(ctx, kind)
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Kind    string `json:"kind"`
				Outcome string `json:"outcome"`
				Summary string `json:"summary"`
			}
			if err := output.PrintSuccess(resp{
				Kind:    string(kind),
				Outcome: string(outcome),
				Summary: outcome.Summary(kind),
			}); err != nil {
				return err
			}

			// Non-zero exit only when every remedy was exhausted.
			if outcome == recovery.OutcomeFailed {
				return printedError{err: errors.New("recovery failed")}
			}
			return nil
		},
	}

	addRecoverFlags(cmd.Flags(), &path, &destructive, &timeout)
	return cmd
}

func addRecoverFlags(flags *pflag.FlagSet, path *string, destructive *bool, timeout *time.Duration) {
	flags.StringVar(path, "path", "", "Target path for file_access and text_busy strategies")
	flags.BoolVar(destructive, "destructive", false, "Allow process-wide destructive remediation (overrides config)")
	flags.DurationVar(timeout, "timeout", 0, "Abort the recovery run after this duration (0 = no limit)")
}

func needsPath(kind recovery.Kind) bool {
	return kind == recovery.KindFileAccess || kind == recovery.KindTextBusy
}

func NewKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List recoverable error kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := recovery.Kinds()
			names := make([]string, 0, len(kinds))
			for _, k := range kinds {
				names = append(names, string(k))
			}
			type resp struct {
				Kinds []string `json:"kinds"`
			}
			return output.PrintSuccess(resp{Kinds: names})
		},
	}
}
