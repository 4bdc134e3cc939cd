// Package model defines the core data types used throughout the fork syncer.
package model

import "time"

// SyncMode governs which branches of a fork are candidates for synchronization.
type SyncMode string

const (
	// SyncModeDefault syncs only the upstream default branch.
	SyncModeDefault SyncMode = "default"
	// SyncModeAll syncs every upstream branch.
	SyncModeAll SyncMode = "all"
	// SyncModeSelective syncs upstream branches matching the configured patterns.
	SyncModeSelective SyncMode = "selective"
)

// ParseSyncMode maps free-form text onto a SyncMode, defaulting to
// SyncModeDefault for empty input. Unknown values are reported by Valid.
func ParseSyncMode(raw string) SyncMode {
	if raw == "" {
		return SyncModeDefault
	}
	return SyncMode(raw)
}

// Valid reports whether the mode is one of the known sync modes.
func (m SyncMode) Valid() bool {
	switch m {
	case SyncModeDefault, SyncModeAll, SyncModeSelective:
		return true
	default:
		return false
	}
}

// ForkRecord describes one fork and its resolved upstream, as discovered
// through the hosting API.
type ForkRecord struct {
	// RepoName is the fork's repository name under the owner account.
	RepoName string `json:"repo_name" yaml:"repo_name"`
	// Owner is the account that owns the fork.
	Owner string `json:"owner" yaml:"owner"`
	// UpstreamFullName is the parent repository as "owner/repo".
	UpstreamFullName string `json:"upstream_full_name" yaml:"upstream_full_name"`
	// UpstreamDefaultBranch is the parent's default branch ("main" when the
	// API reports none).
	UpstreamDefaultBranch string `json:"upstream_default_branch" yaml:"upstream_default_branch"`
}

// FullName returns the fork's "owner/repo" identity.
func (f ForkRecord) FullName() string {
	return f.Owner + "/" + f.RepoName
}

// BranchOutcome enumerates the per-branch reconciliation results.
type BranchOutcome string

const (
	OutcomeSynced  BranchOutcome = "synced"
	OutcomeCreated BranchOutcome = "created"
	OutcomeSkipped BranchOutcome = "skipped"
	OutcomeFailed  BranchOutcome = "failed"
)

// BranchResult records the outcome of reconciling a single branch.
type BranchResult struct {
	// Branch is the branch name the result applies to.
	Branch string `json:"branch" yaml:"branch"`
	// Outcome is the typed reconciliation outcome.
	Outcome BranchOutcome `json:"outcome" yaml:"outcome"`
	// Error contains the failure text when Outcome is OutcomeFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// ErrorClass is a coarse error category (conflict/auth/network/...).
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}

// ForkReport aggregates branch results for one fork.
type ForkReport struct {
	// Fork identifies the fork the report covers.
	Fork ForkRecord `json:"fork" yaml:"fork"`
	// Branches holds per-branch results in processing order.
	Branches []BranchResult `json:"branches" yaml:"branches"`
	// Skipped is set when the whole fork was skipped before branch
	// processing (clone failure, unreachable upstream).
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// SkipReason explains a fork-level skip.
	SkipReason string `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
}

// Synced returns the count of branches with OutcomeSynced.
func (r ForkReport) Synced() int { return r.count(OutcomeSynced) }

// Created returns the count of branches with OutcomeCreated.
func (r ForkReport) Created() int { return r.count(OutcomeCreated) }

// SkippedBranches returns the count of branches with OutcomeSkipped.
func (r ForkReport) SkippedBranches() int { return r.count(OutcomeSkipped) }

// Failed returns the count of branches with OutcomeFailed.
func (r ForkReport) Failed() int { return r.count(OutcomeFailed) }

func (r ForkReport) count(outcome BranchOutcome) int {
	n := 0
	for _, b := range r.Branches {
		if b.Outcome == outcome {
			n++
		}
	}
	return n
}

// RunError is one recorded failure with enough scope to diagnose it.
type RunError struct {
	// Scope identifies where the failure occurred, e.g. "octo/repo#dev"
	// or "account:octo".
	Scope string `json:"scope" yaml:"scope"`
	// Message is the failure text, with credentials redacted.
	Message string `json:"message" yaml:"message"`
}

// RunSummary is the aggregate result of one reconciliation invocation.
// It is created at the start of a run, mutated only by that run's own call
// tree, and discarded after reporting.
type RunSummary struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	// ReposProcessed counts forks the engine attempted.
	ReposProcessed int `json:"repos_processed" yaml:"repos_processed"`
	// BranchesSynced counts branches merged and pushed successfully.
	BranchesSynced int `json:"branches_synced" yaml:"branches_synced"`
	// BranchesCreated counts branches created on the fork remote.
	BranchesCreated int `json:"branches_created" yaml:"branches_created"`
	// BranchesSkipped counts branches deliberately not processed.
	BranchesSkipped int `json:"branches_skipped" yaml:"branches_skipped"`
	// Forks holds the per-fork reports in processing order.
	Forks []ForkReport `json:"forks" yaml:"forks"`
	// Errors is the ordered list of failures across all scopes.
	Errors []RunError `json:"errors" yaml:"errors"`
}

// RecordError appends a failure to the summary's error list.
func (s *RunSummary) RecordError(scope, message string) {
	s.Errors = append(s.Errors, RunError{Scope: scope, Message: message})
}

// AddFork merges a fork report into the aggregate counts.
func (s *RunSummary) AddFork(report ForkReport) {
	s.ReposProcessed++
	s.BranchesSynced += report.Synced()
	s.BranchesCreated += report.Created()
	s.BranchesSkipped += report.SkippedBranches()
	s.Forks = append(s.Forks, report)
}

// HasErrors reports whether any failure was recorded during the run.
func (s *RunSummary) HasErrors() bool { return len(s.Errors) > 0 }
