// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// wrapErr attaches the git operation and its combined output to an error so
// callers can classify the failure from the message text.
func wrapErr(op, out string, err error) error {
	out = strings.TrimSpace(out)
	if out == "" {
		return fmt.Errorf("git %s: %w", op, err)
	}
	return fmt.Errorf("git %s: %w: %s", op, err, out)
}

// IsRepo checks whether the given path is inside a git working tree.
func IsRepo(ctx context.Context, r Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(out) == "true", nil
}

// Clone clones url into dir. The parent directory must already exist.
func Clone(ctx context.Context, r Runner, url, dir string) error {
	out, err := r.Run(ctx, "", "clone", url, dir)
	if err != nil {
		return wrapErr("clone", out, err)
	}
	return nil
}

// RemoteURL returns the fetch URL for the named remote, or "" when the
// remote does not exist.
func RemoteURL(ctx context.Context, r Runner, dir, name string) string {
	out, err := r.Run(ctx, dir, "remote", "get-url", name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// AddRemote registers a new remote.
func AddRemote(ctx context.Context, r Runner, dir, name, url string) error {
	out, err := r.Run(ctx, dir, "remote", "add", name, url)
	if err != nil {
		return wrapErr("remote add", out, err)
	}
	return nil
}

// SetRemoteURL repoints an existing remote.
func SetRemoteURL(ctx context.Context, r Runner, dir, name, url string) error {
	out, err := r.Run(ctx, dir, "remote", "set-url", name, url)
	if err != nil {
		return wrapErr("remote set-url", out, err)
	}
	return nil
}

// Fetch updates remote-tracking refs from the named remote, pruning refs
// deleted on the remote and skipping submodule recursion.
func Fetch(ctx context.Context, r Runner, dir, remote string) error {
	out, err := r.Run(ctx, dir, "-c", "fetch.recurseSubmodules=false", "fetch", "--prune", "--no-recurse-submodules", remote)
	if err != nil {
		return wrapErr("fetch "+remote, out, err)
	}
	return nil
}

// RemoteBranches lists branch names known under refs/remotes/<remote>,
// excluding the symbolic HEAD entry.
func RemoteBranches(ctx context.Context, r Runner, dir, remote string) ([]string, error) {
	out, err := r.Run(ctx, dir, "for-each-ref", "--format=%(refname:strip=3)", "refs/remotes/"+remote)
	if err != nil {
		return nil, wrapErr("for-each-ref "+remote, out, err)
	}
	return ParseBranchList(out), nil
}

// LocalBranchExists reports whether refs/heads/<branch> exists.
func LocalBranchExists(ctx context.Context, r Runner, dir, branch string) bool {
	_, err := r.Run(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// CurrentBranch returns the checked-out branch, or "" on detached HEAD.
func CurrentBranch(ctx context.Context, r Runner, dir string) string {
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Checkout switches the working copy to an existing local branch.
func Checkout(ctx context.Context, r Runner, dir, branch string) error {
	out, err := r.Run(ctx, dir, "checkout", branch)
	if err != nil {
		return wrapErr("checkout "+branch, out, err)
	}
	return nil
}

// CheckoutNew creates branch from startPoint and switches to it. When the
// start point is a remote-tracking ref, git sets up upstream tracking.
func CheckoutNew(ctx context.Context, r Runner, dir, branch, startPoint string) error {
	out, err := r.Run(ctx, dir, "checkout", "-b", branch, startPoint)
	if err != nil {
		return wrapErr("checkout -b "+branch, out, err)
	}
	return nil
}

// ResetHard force-resets the current branch and working tree to ref.
func ResetHard(ctx context.Context, r Runner, dir, ref string) error {
	out, err := r.Run(ctx, dir, "reset", "--hard", ref)
	if err != nil {
		return wrapErr("reset --hard "+ref, out, err)
	}
	return nil
}

// Merge merges ref into the current branch, fast-forwarding when possible
// and otherwise creating a merge commit without opening an editor.
func Merge(ctx context.Context, r Runner, dir, ref string) error {
	out, err := r.Run(ctx, dir, "merge", "--no-edit", ref)
	if err != nil {
		return wrapErr("merge "+ref, out, err)
	}
	return nil
}

// MergeAbort abandons an in-progress merge, restoring the pre-merge state.
func MergeAbort(ctx context.Context, r Runner, dir string) error {
	out, err := r.Run(ctx, dir, "merge", "--abort")
	if err != nil {
		return wrapErr("merge --abort", out, err)
	}
	return nil
}

// Push pushes branch to the named remote.
func Push(ctx context.Context, r Runner, dir, remote, branch string) error {
	out, err := r.Run(ctx, dir, "push", remote, branch)
	if err != nil {
		return wrapErr("push "+remote+" "+branch, out, err)
	}
	return nil
}

// PushWithLease force-pushes branch, refusing when the remote has moved
// since it was last fetched.
func PushWithLease(ctx context.Context, r Runner, dir, remote, branch string) error {
	out, err := r.Run(ctx, dir, "push", "--force-with-lease", remote, branch)
	if err != nil {
		return wrapErr("push --force-with-lease "+remote+" "+branch, out, err)
	}
	return nil
}

// PushSetUpstream pushes a new branch and records the remote as upstream.
func PushSetUpstream(ctx context.Context, r Runner, dir, remote, branch string) error {
	out, err := r.Run(ctx, dir, "push", "-u", remote, branch)
	if err != nil {
		return wrapErr("push -u "+remote+" "+branch, out, err)
	}
	return nil
}

// DeleteBranch removes a local branch regardless of its merge state.
func DeleteBranch(ctx context.Context, r Runner, dir, branch string) error {
	out, err := r.Run(ctx, dir, "branch", "-D", branch)
	if err != nil {
		return wrapErr("branch -D "+branch, out, err)
	}
	return nil
}
