// Package vcs abstracts the version-control operations the reconciliation
// engine relies on, so the engine is testable without a git binary.
package vcs

import (
	"context"

	"github.com/dynacylabs/github-fork-syncer/internal/gitx"
)

// Adapter defines the working-copy operations used during fork
// reconciliation. Git via the CLI is the only production implementation.
type Adapter interface {
	Name() string
	IsRepo(ctx context.Context, dir string) (bool, error)
	Clone(ctx context.Context, url, dir string) error
	RemoteURL(ctx context.Context, dir, name string) string
	AddRemote(ctx context.Context, dir, name, url string) error
	SetRemoteURL(ctx context.Context, dir, name, url string) error
	Fetch(ctx context.Context, dir, remote string) error
	RemoteBranches(ctx context.Context, dir, remote string) ([]string, error)
	LocalBranchExists(ctx context.Context, dir, branch string) bool
	CurrentBranch(ctx context.Context, dir string) string
	Checkout(ctx context.Context, dir, branch string) error
	CheckoutNew(ctx context.Context, dir, branch, startPoint string) error
	ResetHard(ctx context.Context, dir, ref string) error
	Merge(ctx context.Context, dir, ref string) error
	MergeAbort(ctx context.Context, dir string) error
	Push(ctx context.Context, dir, remote, branch string) error
	PushWithLease(ctx context.Context, dir, remote, branch string) error
	PushSetUpstream(ctx context.Context, dir, remote, branch string) error
	DeleteBranch(ctx context.Context, dir, branch string) error
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) IsRepo(ctx context.Context, dir string) (bool, error) {
	return gitx.IsRepo(ctx, g.Runner, dir)
}

func (g *GitAdapter) Clone(ctx context.Context, url, dir string) error {
	return gitx.Clone(ctx, g.Runner, url, dir)
}

func (g *GitAdapter) RemoteURL(ctx context.Context, dir, name string) string {
	return gitx.RemoteURL(ctx, g.Runner, dir, name)
}

func (g *GitAdapter) AddRemote(ctx context.Context, dir, name, url string) error {
	return gitx.AddRemote(ctx, g.Runner, dir, name, url)
}

func (g *GitAdapter) SetRemoteURL(ctx context.Context, dir, name, url string) error {
	return gitx.SetRemoteURL(ctx, g.Runner, dir, name, url)
}

func (g *GitAdapter) Fetch(ctx context.Context, dir, remote string) error {
	return gitx.Fetch(ctx, g.Runner, dir, remote)
}

func (g *GitAdapter) RemoteBranches(ctx context.Context, dir, remote string) ([]string, error) {
	return gitx.RemoteBranches(ctx, g.Runner, dir, remote)
}

func (g *GitAdapter) LocalBranchExists(ctx context.Context, dir, branch string) bool {
	return gitx.LocalBranchExists(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, dir string) string {
	return gitx.CurrentBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) Checkout(ctx context.Context, dir, branch string) error {
	return gitx.Checkout(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) CheckoutNew(ctx context.Context, dir, branch, startPoint string) error {
	return gitx.CheckoutNew(ctx, g.Runner, dir, branch, startPoint)
}

func (g *GitAdapter) ResetHard(ctx context.Context, dir, ref string) error {
	return gitx.ResetHard(ctx, g.Runner, dir, ref)
}

func (g *GitAdapter) Merge(ctx context.Context, dir, ref string) error {
	return gitx.Merge(ctx, g.Runner, dir, ref)
}

func (g *GitAdapter) MergeAbort(ctx context.Context, dir string) error {
	return gitx.MergeAbort(ctx, g.Runner, dir)
}

func (g *GitAdapter) Push(ctx context.Context, dir, remote, branch string) error {
	return gitx.Push(ctx, g.Runner, dir, remote, branch)
}

func (g *GitAdapter) PushWithLease(ctx context.Context, dir, remote, branch string) error {
	return gitx.PushWithLease(ctx, g.Runner, dir, remote, branch)
}

func (g *GitAdapter) PushSetUpstream(ctx context.Context, dir, remote, branch string) error {
	return gitx.PushSetUpstream(ctx, g.Runner, dir, remote, branch)
}

func (g *GitAdapter) DeleteBranch(ctx context.Context, dir, branch string) error {
	return gitx.DeleteBranch(ctx, g.Runner, dir, branch)
}
