package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dynacylabs/github-fork-syncer/internal/model"
	"github.com/dynacylabs/github-fork-syncer/internal/strutil"
)

// Environment variable names. Each overrides the corresponding config file
// field.
const (
	EnvToken       = "GITHUB_TOKEN"
	EnvTokenFile   = "GITHUB_TOKEN_FILE"
	EnvUsers       = "GITHUB_USERS"
	EnvUser        = "GITHUB_USER"
	EnvSyncMode    = "SYNC_MODE"
	EnvPatterns    = "BRANCH_PATTERNS"
	EnvCreateNew   = "CREATE_NEW_BRANCHES"
	EnvSchedule    = "SCHEDULE"
	EnvRunOnStart  = "RUN_ON_STARTUP"
	EnvStorageRoot = "STORAGE_ROOT"
)

// Settings is the fully resolved runtime configuration consumed by the
// engine and scheduler.
type Settings struct {
	Token             string
	Accounts          []string
	StorageRoot       string
	SyncMode          model.SyncMode
	BranchPatterns    []string
	CreateNewBranches bool
	Schedule          string
	RunOnStartup      bool
	Include           []string
	Exclude           []string
	APIBaseURL        string
}

// Resolve combines the config file, environment, and explicit CLI account
// arguments into Settings. Token and account resolution failures are fatal
// configuration errors.
func Resolve(cfg *Config, args []string) (*Settings, error) {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}

	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}

	accounts, err := resolveAccounts(cfg, args)
	if err != nil {
		return nil, err
	}

	mode := model.ParseSyncMode(firstNonEmpty(os.Getenv(EnvSyncMode), cfg.SyncMode))
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid sync mode %q (want default, all, or selective)", mode)
	}

	patterns := cfg.BranchPatterns
	if env := os.Getenv(EnvPatterns); env != "" {
		patterns = strutil.SplitCSV(env)
	}

	storageRoot := firstNonEmpty(os.Getenv(EnvStorageRoot), cfg.StorageRoot)
	if storageRoot == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve storage root: %w", err)
		}
		storageRoot = filepath.Join(cache, "forksyncer", "repos")
	}

	settings := &Settings{
		Token:             token,
		Accounts:          accounts,
		StorageRoot:       storageRoot,
		SyncMode:          mode,
		BranchPatterns:    patterns,
		CreateNewBranches: envBool(EnvCreateNew, cfg.CreateNewBranches),
		Schedule:          firstNonEmpty(os.Getenv(EnvSchedule), cfg.Schedule, DefaultConfig().Schedule),
		RunOnStartup:      envBool(EnvRunOnStart, cfg.RunOnStartup),
		Include:           cfg.Filters.Include,
		Exclude:           cfg.Filters.Exclude,
		APIBaseURL:        cfg.APIBaseURL,
	}
	return settings, nil
}

func resolveToken(cfg *Config) (string, error) {
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		return token, nil
	}
	for _, path := range []string{os.Getenv(EnvTokenFile), cfg.TokenFile} {
		if strings.TrimSpace(path) == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read token file %s: %w", path, err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("token file %s is empty", path)
		}
		return token, nil
	}
	return "", errors.New("no API token: set " + EnvToken + ", " + EnvTokenFile + ", or token_file in config")
}

// resolveAccounts walks the account sources in priority order and returns
// the first populated one. Sources are never merged.
func resolveAccounts(cfg *Config, args []string) ([]string, error) {
	if accounts := trimAll(args); len(accounts) > 0 {
		return accounts, nil
	}
	if accounts := strutil.SplitList(os.Getenv(EnvUsers)); len(accounts) > 0 {
		return accounts, nil
	}
	if account := strings.TrimSpace(os.Getenv(EnvUser)); account != "" {
		return []string{account}, nil
	}
	if accounts := trimAll(cfg.Accounts); len(accounts) > 0 {
		return accounts, nil
	}
	if cfg.AccountsFile != "" {
		data, err := os.ReadFile(cfg.AccountsFile)
		if err != nil {
			return nil, fmt.Errorf("read accounts file %s: %w", cfg.AccountsFile, err)
		}
		if accounts := strutil.SplitLines(string(data)); len(accounts) > 0 {
			return accounts, nil
		}
	}
	return nil, errors.New("no accounts: pass usernames as arguments or set " + EnvUsers + ", " + EnvUser + ", or accounts in config")
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
