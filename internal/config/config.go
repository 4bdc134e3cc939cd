// Package config handles loading the fork syncer configuration file and
// resolving the effective settings from file, environment, and arguments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory config file.
	LocalConfigFilename = ".forksyncer.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "dynacylabs.io/forksyncer/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "ForkSyncerConfig"
)

// Filters holds repository name filters applied during fork discovery.
type Filters struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Config represents the on-disk configuration file.
type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`

	// Accounts lists usernames to reconcile. Environment variables and CLI
	// arguments take precedence; see Resolve.
	Accounts []string `yaml:"accounts,omitempty"`
	// AccountsFile points at a newline-delimited username list.
	AccountsFile string `yaml:"accounts_file,omitempty"`
	// TokenFile points at a file whose trimmed content is the API token.
	// Tokens never live in the config file itself.
	TokenFile string `yaml:"token_file,omitempty"`
	// StorageRoot is where working copies are kept, keyed account/repo.
	StorageRoot string `yaml:"storage_root,omitempty"`
	// SyncMode is one of default, all, selective.
	SyncMode string `yaml:"sync_mode,omitempty"`
	// BranchPatterns select branches in selective mode.
	BranchPatterns []string `yaml:"branch_patterns,omitempty"`
	// CreateNewBranches enables pushing upstream-only branches to the fork.
	CreateNewBranches bool `yaml:"create_new_branches"`
	// Schedule is the five-field cron-style expression for the daemon.
	Schedule string `yaml:"schedule,omitempty"`
	// RunOnStartup fires one reconciliation when the daemon starts,
	// regardless of the schedule.
	RunOnStartup bool `yaml:"run_on_startup"`
	// Filters restrict which forks are considered at all.
	Filters Filters `yaml:"filters,omitempty"`
	// APIBaseURL overrides the hosting API endpoint (GitHub Enterprise).
	APIBaseURL string `yaml:"api_base_url,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		SyncMode:   "default",
		Schedule:   "0 * * * *",
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, FORKSYNCER_CONFIG env var,
// and finally os.UserConfigDir()/forksyncer.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv("FORKSYNCER_CONFIG"); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "forksyncer"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv("FORKSYNCER_CONFIG"); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, FORKSYNCER_CONFIG, nearest local dotfile in
// cwd/parents, then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv("FORKSYNCER_CONFIG") != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for
// .forksyncer.yaml. It returns an empty string when no local config file
// is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path. A missing file yields
// the defaults, since the whole surface is also settable via environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}
	if cfg.SyncMode == "" {
		cfg.SyncMode = DefaultConfig().SyncMode
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultConfig().Schedule
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func isConfigFilePath(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, "config.yaml") || strings.HasSuffix(lower, "config.yml") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
