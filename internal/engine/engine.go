// SPDX-License-Identifier: MIT
// Package engine implements branch reconciliation for forked repositories.
// It coordinates fork discovery, per-branch merge/push against local
// working copies, and run summary aggregation.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dynacylabs/github-fork-syncer/internal/discovery"
	"github.com/dynacylabs/github-fork-syncer/internal/gitx"
	"github.com/dynacylabs/github-fork-syncer/internal/model"
	"github.com/dynacylabs/github-fork-syncer/internal/pattern"
	"github.com/dynacylabs/github-fork-syncer/internal/vcs"
)

const (
	// forkRemote is the remote alias pointing at the user's fork.
	forkRemote = "origin"
	// upstreamRemote is the remote alias pointing at the parent repository.
	upstreamRemote = "upstream"

	defaultHost = "github.com"
)

// Options configures a reconciliation run.
type Options struct {
	Accounts          []string
	Token             string
	StorageRoot       string
	Mode              model.SyncMode
	Patterns          pattern.Set
	CreateNewBranches bool
	Include           []string
	Exclude           []string
	DryRun            bool
	// Host overrides the git remote host, for tests.
	Host   string
	Logf   func(format string, args ...any)
	Debugf func(format string, args ...any)
}

// Engine is the orchestrator for one or more reconciliation runs. A single
// Engine must not run concurrently with itself: runs share the working
// copies under StorageRoot.
type Engine struct {
	opts    Options
	adapter vcs.Adapter
	client  discovery.Lister
}

// New creates an Engine. A nil adapter falls back to the git CLI.
func New(opts Options, adapter vcs.Adapter, client discovery.Lister) *Engine {
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	if opts.Host == "" {
		opts.Host = defaultHost
	}
	return &Engine{opts: opts, adapter: adapter, client: client}
}

// Run performs one full reconciliation pass over every configured account.
// All failures are recorded in the returned summary; none escalate past
// their scope, so Run itself never fails.
func (e *Engine) Run(ctx context.Context) *model.RunSummary {
	summary := &model.RunSummary{StartedAt: time.Now()}
	for _, account := range e.opts.Accounts {
		e.runAccount(ctx, account, summary)
	}
	summary.FinishedAt = time.Now()
	return summary
}

// runAccount discovers an account's forks and reconciles each in turn.
// A discovery failure empties this account's contribution but leaves other
// accounts untouched.
func (e *Engine) runAccount(ctx context.Context, account string, summary *model.RunSummary) {
	e.logf("processing account %s", account)
	forks, err := discovery.DiscoverForks(ctx, e.client, account, discovery.Options{
		Include: e.opts.Include,
		Exclude: e.opts.Exclude,
		Logf:    e.opts.Debugf,
	})
	if err != nil {
		e.logf("account %s: discovery failed: %v", account, err)
		summary.RecordError("account:"+account, e.redact(err.Error()))
		return
	}
	e.logf("account %s: %d forks to reconcile", account, len(forks))
	for _, fork := range forks {
		report := e.reconcileFork(ctx, fork)
		for _, branch := range report.Branches {
			if branch.Outcome == model.OutcomeFailed {
				summary.RecordError(fork.FullName()+"#"+branch.Branch, branch.Error)
			}
		}
		if report.Skipped {
			summary.RecordError("fork:"+fork.FullName(), report.SkipReason)
		}
		summary.AddFork(report)
	}
}

// reconcileFork brings one fork's branches up to date with its upstream.
// Fork-level failures (no working copy, no upstream) skip the fork; branch
// failures are recorded per branch and never stop siblings.
func (e *Engine) reconcileFork(ctx context.Context, fork model.ForkRecord) model.ForkReport {
	report := model.ForkReport{Fork: fork}
	dir := e.workdir(fork)

	if skip := e.ensureClone(ctx, fork, dir); skip != "" {
		return skippedFork(report, skip)
	}
	if !e.opts.DryRun {
		if err := e.ensureUpstreamRemote(ctx, fork, dir); err != nil {
			return skippedFork(report, "configure upstream remote: "+e.redact(err.Error()))
		}
	}

	// The fork's own remote may simply be stale; upstream is required.
	if err := e.adapter.Fetch(ctx, dir, forkRemote); err != nil {
		e.logf("%s: fetch %s failed (continuing): %v", fork.FullName(), forkRemote, e.redact(err.Error()))
	}
	if err := e.adapter.Fetch(ctx, dir, upstreamRemote); err != nil {
		return skippedFork(report, "fetch upstream: "+e.redact(err.Error()))
	}

	upstreamBranches, err := e.adapter.RemoteBranches(ctx, dir, upstreamRemote)
	if err != nil {
		return skippedFork(report, "list upstream branches: "+e.redact(err.Error()))
	}

	candidates := e.selectBranches(upstreamBranches, fork.UpstreamDefaultBranch)
	forkBranches := map[string]bool{}
	if e.opts.Mode == model.SyncModeDefault {
		// The fork necessarily carries its default branch; skip the listing.
		forkBranches[fork.UpstreamDefaultBranch] = true
	} else {
		names, err := e.adapter.RemoteBranches(ctx, dir, forkRemote)
		if err != nil {
			return skippedFork(report, "list fork branches: "+e.redact(err.Error()))
		}
		for _, name := range names {
			forkBranches[name] = true
		}
	}

	for _, branch := range candidates {
		result := e.reconcileBranch(ctx, fork, dir, branch, forkBranches[branch])
		report.Branches = append(report.Branches, result)
		e.debugf("%s: branch %s -> %s", fork.FullName(), branch, result.Outcome)
	}

	if !e.opts.DryRun {
		// Leave the working copy parked on the default branch.
		if err := e.adapter.Checkout(ctx, dir, fork.UpstreamDefaultBranch); err != nil {
			e.logf("%s: could not return to %s: %v", fork.FullName(), fork.UpstreamDefaultBranch, e.redact(err.Error()))
		}
	}
	e.logf("%s: %d synced, %d created, %d skipped, %d failed",
		fork.FullName(), report.Synced(), report.Created(), report.SkippedBranches(), report.Failed())
	return report
}

// ensureClone guarantees a working copy for the fork exists at dir.
// It returns a non-empty skip reason when the fork cannot be processed.
func (e *Engine) ensureClone(ctx context.Context, fork model.ForkRecord, dir string) string {
	isRepo, err := e.adapter.IsRepo(ctx, dir)
	if err != nil {
		return "inspect working copy: " + e.redact(err.Error())
	}
	if isRepo {
		return ""
	}
	if e.opts.DryRun {
		return "no local working copy (would clone)"
	}
	e.logf("%s: cloning into %s", fork.FullName(), dir)
	if err := e.adapter.Clone(ctx, e.remoteURL(fork.FullName()), dir); err != nil {
		return "clone: " + e.redact(err.Error())
	}
	return ""
}

// ensureUpstreamRemote creates or repoints the upstream alias so it targets
// the fork's parent repository.
func (e *Engine) ensureUpstreamRemote(ctx context.Context, fork model.ForkRecord, dir string) error {
	desired := e.remoteURL(fork.UpstreamFullName)
	current := e.adapter.RemoteURL(ctx, dir, upstreamRemote)
	switch {
	case current == "":
		return e.adapter.AddRemote(ctx, dir, upstreamRemote, desired)
	case !gitx.SameRepo(current, desired):
		e.debugf("%s: repointing %s from %s", fork.FullName(), upstreamRemote, gitx.RedactURL(current))
		return e.adapter.SetRemoteURL(ctx, dir, upstreamRemote, desired)
	default:
		return nil
	}
}

// selectBranches applies the sync mode to the upstream branch list.
func (e *Engine) selectBranches(upstreamBranches []string, defaultBranch string) []string {
	switch e.opts.Mode {
	case model.SyncModeAll:
		return upstreamBranches
	case model.SyncModeSelective:
		var out []string
		for _, branch := range upstreamBranches {
			if e.opts.Patterns.Matches(branch) {
				out = append(out, branch)
			}
		}
		return out
	default:
		return []string{defaultBranch}
	}
}

// reconcileBranch processes a single candidate branch. existsOnFork decides
// between the merge path and the create path.
func (e *Engine) reconcileBranch(ctx context.Context, fork model.ForkRecord, dir, branch string, existsOnFork bool) model.BranchResult {
	if existsOnFork {
		return e.syncBranch(ctx, dir, branch)
	}
	if !e.opts.CreateNewBranches {
		return model.BranchResult{Branch: branch, Outcome: model.OutcomeSkipped}
	}
	return e.createBranch(ctx, dir, branch, fork.UpstreamDefaultBranch)
}

// syncBranch merges the upstream branch into the fork's copy and pushes the
// result back. The local branch is reset to the fork remote's tip first;
// the working copy is a disposable cache, never a source of truth.
func (e *Engine) syncBranch(ctx context.Context, dir, branch string) model.BranchResult {
	if e.opts.DryRun {
		return model.BranchResult{Branch: branch, Outcome: model.OutcomeSynced}
	}
	if e.adapter.LocalBranchExists(ctx, dir, branch) {
		if err := e.adapter.Checkout(ctx, dir, branch); err != nil {
			return e.failed(branch, "checkout", err)
		}
	} else {
		if err := e.adapter.CheckoutNew(ctx, dir, branch, forkRemote+"/"+branch); err != nil {
			return e.failed(branch, "checkout", err)
		}
	}
	if err := e.adapter.ResetHard(ctx, dir, forkRemote+"/"+branch); err != nil {
		return e.failed(branch, "reset", err)
	}
	if err := e.adapter.Merge(ctx, dir, upstreamRemote+"/"+branch); err != nil {
		if gitx.IsConflict(err) {
			if abortErr := e.adapter.MergeAbort(ctx, dir); abortErr != nil {
				e.logf("merge abort on %s failed: %v", branch, e.redact(abortErr.Error()))
			}
		}
		return e.failed(branch, "merge", err)
	}
	if err := e.adapter.Push(ctx, dir, forkRemote, branch); err != nil {
		if !gitx.IsRejectedPush(err) {
			return e.failed(branch, "push", err)
		}
		// The remote tip was just fetched, so a lease-protected force
		// push cannot clobber work we have not seen.
		if err := e.adapter.PushWithLease(ctx, dir, forkRemote, branch); err != nil {
			return e.failed(branch, "push (lease retry)", err)
		}
	}
	return model.BranchResult{Branch: branch, Outcome: model.OutcomeSynced}
}

// createBranch materializes an upstream-only branch on the fork remote.
// A failed push rolls the local branch back so no local-only branch is
// left behind looking synced.
func (e *Engine) createBranch(ctx context.Context, dir, branch, defaultBranch string) model.BranchResult {
	if e.opts.DryRun {
		return model.BranchResult{Branch: branch, Outcome: model.OutcomeCreated}
	}
	if err := e.adapter.CheckoutNew(ctx, dir, branch, upstreamRemote+"/"+branch); err != nil {
		return e.failed(branch, "create branch", err)
	}
	if err := e.adapter.PushSetUpstream(ctx, dir, forkRemote, branch); err != nil {
		if coErr := e.adapter.Checkout(ctx, dir, defaultBranch); coErr != nil {
			e.logf("rollback checkout of %s failed: %v", defaultBranch, e.redact(coErr.Error()))
		} else if delErr := e.adapter.DeleteBranch(ctx, dir, branch); delErr != nil {
			e.logf("rollback delete of %s failed: %v", branch, e.redact(delErr.Error()))
		}
		return e.failed(branch, "push new branch", err)
	}
	return model.BranchResult{Branch: branch, Outcome: model.OutcomeCreated}
}

func (e *Engine) failed(branch, op string, err error) model.BranchResult {
	return model.BranchResult{
		Branch:     branch,
		Outcome:    model.OutcomeFailed,
		Error:      fmt.Sprintf("%s: %s", op, e.redact(err.Error())),
		ErrorClass: gitx.ClassifyError(err),
	}
}

// workdir returns the working copy path for a fork, keyed by account and
// repository name under the storage root.
func (e *Engine) workdir(fork model.ForkRecord) string {
	return filepath.Join(e.opts.StorageRoot, fork.Owner, fork.RepoName)
}

// remoteURL builds an authenticated HTTPS remote URL for "owner/repo".
func (e *Engine) remoteURL(fullName string) string {
	if e.opts.Token == "" {
		return "https://" + e.opts.Host + "/" + fullName + ".git"
	}
	return "https://" + e.opts.Token + "@" + e.opts.Host + "/" + fullName + ".git"
}

// redact strips the token from text destined for logs or recorded errors.
func (e *Engine) redact(s string) string {
	if e.opts.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, e.opts.Token, "***")
}

func (e *Engine) logf(format string, args ...any) {
	if e.opts.Logf != nil {
		e.opts.Logf(format, args...)
	}
}

func (e *Engine) debugf(format string, args ...any) {
	if e.opts.Debugf != nil {
		e.opts.Debugf(format, args...)
	}
}

func skippedFork(report model.ForkReport, reason string) model.ForkReport {
	report.Skipped = true
	report.SkipReason = reason
	return report
}
