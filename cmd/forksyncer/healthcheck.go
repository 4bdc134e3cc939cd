package forksyncer

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dynacylabs/github-fork-syncer/internal/scheduler"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe configuration and scheduler liveness",
	Long:  "Healthcheck exits 0 when configuration resolves and the scheduler state file is fresh, 1 when the last fire looks stale, and 2 when required configuration is missing.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := loadSettings(cmd, nil)
		if err != nil {
			infof(cmd, "healthcheck: configuration: %v", err)
			raiseExitCode(2)
			return nil
		}

		maxAge, _ := cmd.Flags().GetDuration("max-age")
		statePath := filepath.Join(settings.StorageRoot, stateFilename)
		st, err := scheduler.LoadState(statePath)
		if err != nil {
			// The daemon writes state only after its first fire; absence
			// alone is not a failure.
			infof(cmd, "healthcheck: no scheduler state at %s yet", statePath)
			return nil
		}

		if age := time.Since(st.LastFire); !st.LastFire.IsZero() && age > maxAge {
			infof(cmd, "healthcheck: stale: last fire %s ago (threshold %s)", age.Round(time.Second), maxAge)
			raiseExitCode(1)
			return nil
		}
		infof(cmd, "healthcheck: ok (%d runs, %d failed, last fire %s)",
			st.TotalRuns, st.FailedRuns, st.LastFire.Format(time.RFC3339))
		return nil
	},
}

func init() {
	healthcheckCmd.Flags().Duration("max-age", 2*time.Hour, "age past which the last scheduler fire counts as stale")
	rootCmd.AddCommand(healthcheckCmd)
}
