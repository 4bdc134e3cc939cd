package forksyncer

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dynacylabs/github-fork-syncer/internal/config"
	"github.com/dynacylabs/github-fork-syncer/internal/engine"
	"github.com/dynacylabs/github-fork-syncer/internal/github"
	"github.com/dynacylabs/github-fork-syncer/internal/pattern"
)

var runCmd = &cobra.Command{
	Use:   "run [account...]",
	Short: "Reconcile all forks once and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if cmd.Flags().Changed("include") {
			settings.Include, _ = cmd.Flags().GetStringSlice("include")
		}
		if cmd.Flags().Changed("exclude") {
			settings.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		}

		eng := newEngine(cmd, settings, dryRun)
		summary := eng.Run(cmd.Context())

		if err := renderSummary(cmd.OutOrStdout(), summary, shouldUseColorOutput(cmd)); err != nil {
			return err
		}
		if summary.HasErrors() {
			raiseExitCode(2)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "report branch actions without touching git remotes")
	runCmd.Flags().StringSlice("include", nil, "only reconcile forks whose name matches a glob")
	runCmd.Flags().StringSlice("exclude", nil, "skip forks whose name matches a glob")
	rootCmd.AddCommand(runCmd)
}

// loadSettings resolves the layered configuration for a command invocation.
// Failures here are startup configuration errors and surface as exit 3.
func loadSettings(cmd *cobra.Command, args []string) (*config.Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	debugf(cmd, "using config %s", cfgPath)

	settings, err := config.Resolve(cfg, args)
	if err != nil {
		return nil, err
	}
	debugf(cmd, "accounts: %v, mode: %s, storage: %s", settings.Accounts, settings.SyncMode, settings.StorageRoot)
	return settings, nil
}

// newEngine wires the resolved settings into a reconciliation engine backed
// by the git CLI and the GitHub API.
func newEngine(cmd *cobra.Command, settings *config.Settings, dryRun bool) *engine.Engine {
	client := github.NewClient(settings.Token)
	if settings.APIBaseURL != "" {
		client.BaseURL = settings.APIBaseURL
	}
	return engine.New(engine.Options{
		Accounts:          settings.Accounts,
		Token:             settings.Token,
		StorageRoot:       settings.StorageRoot,
		Mode:              settings.SyncMode,
		Patterns:          pattern.NewSet(settings.BranchPatterns),
		CreateNewBranches: settings.CreateNewBranches,
		Include:           settings.Include,
		Exclude:           settings.Exclude,
		DryRun:            dryRun,
		Logf: func(format string, args ...any) {
			infof(cmd, format, args...)
		},
		Debugf: func(format string, args ...any) {
			debugf(cmd, format, args...)
		},
	}, nil, client)
}
