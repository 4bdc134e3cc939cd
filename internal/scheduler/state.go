// SPDX-License-Identifier: MIT
package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// RunResult records the outcome of a single scheduled run.
type RunResult string

const (
	ResultOK    RunResult = "ok"
	ResultError RunResult = "error"
)

// State is the on-disk record of scheduler activity. The daemon writes it
// after every run; healthchecks read it to tell a live scheduler from a
// wedged one.
type State struct {
	UpdatedAt  time.Time `yaml:"updated_at,omitempty"`
	LastFire   time.Time `yaml:"last_fire,omitempty"`
	LastResult RunResult `yaml:"last_result,omitempty"`
	LastError  string    `yaml:"last_error,omitempty"`
	TotalRuns  int       `yaml:"total_runs"`
	FailedRuns int       `yaml:"failed_runs"`
}

// LoadState reads a scheduler state file from the given path.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes the scheduler state to the given path.
func SaveState(st *State, path string) error {
	if st == nil {
		return errors.New("state is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RecordRun folds one run outcome into the state.
func (s *State) RecordRun(firedAt time.Time, runErr error) {
	s.LastFire = firedAt
	s.UpdatedAt = time.Now()
	s.TotalRuns++
	if runErr != nil {
		s.FailedRuns++
		s.LastResult = ResultError
		s.LastError = runErr.Error()
		return
	}
	s.LastResult = ResultOK
	s.LastError = ""
}
