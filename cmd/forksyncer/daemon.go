package forksyncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dynacylabs/github-fork-syncer/internal/schedule"
	"github.com/dynacylabs/github-fork-syncer/internal/scheduler"
)

// stateFilename is the scheduler state file kept under the storage root.
const stateFilename = "scheduler-state.yaml"

var daemonCmd = &cobra.Command{
	Use:   "daemon [account...]",
	Short: "Run the scheduler loop until terminated",
	Long:  "Daemon polls the clock once a minute, fires a reconciliation run whenever the configured cron-style schedule matches, and records each run in a state file under the storage root.",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}

		spec, parseErrs := schedule.Parse(settings.Schedule)
		if spec == nil {
			return fmt.Errorf("invalid schedule: %v", parseErrs[0])
		}
		// Bad fields never match, so a partially valid schedule fires less
		// often than intended, or never. Warn once per field at startup.
		for _, parseErr := range parseErrs {
			infof(cmd, "warning: schedule %q: %v", settings.Schedule, parseErr)
			raiseExitCode(1)
		}

		eng := newEngine(cmd, settings, false)
		job := func(ctx context.Context) error {
			summary := eng.Run(ctx)
			if err := renderSummary(cmd.OutOrStdout(), summary, shouldUseColorOutput(cmd)); err != nil {
				return err
			}
			if summary.HasErrors() {
				return fmt.Errorf("%d errors during run", len(summary.Errors))
			}
			return nil
		}

		sched := scheduler.New(spec, job)
		sched.StatePath = filepath.Join(settings.StorageRoot, stateFilename)
		sched.RunOnStartup = settings.RunOnStartup
		sched.Logf = func(format string, args ...any) {
			infof(cmd, format, args...)
		}

		infof(cmd, "daemon: schedule %q, %d accounts, state %s", settings.Schedule, len(settings.Accounts), sched.StatePath)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := sched.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		infof(cmd, "daemon: shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
