// Package discovery resolves which forks an account owns and where each
// fork's upstream lives, via the hosting API.
package discovery

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dynacylabs/github-fork-syncer/internal/github"
	"github.com/dynacylabs/github-fork-syncer/internal/model"
)

// Lister is the API surface discovery needs. *github.Client satisfies it.
type Lister interface {
	ListUserRepos(ctx context.Context, account string) ([]github.Repo, error)
	GetRepo(ctx context.Context, owner, name string) (*github.Repo, error)
}

// Options configures a discovery pass.
type Options struct {
	// Include restricts discovery to repo names matching any glob pattern.
	// Empty means all forks.
	Include []string
	// Exclude drops repo names matching any glob pattern. Exclusion wins
	// over inclusion.
	Exclude []string
	// Logf receives per-repo skip reasons. Nil disables logging.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// DiscoverForks lists the account's repositories, keeps the forks that pass
// the name filters, and resolves each fork's upstream. Individual forks
// with unresolvable parents are skipped with a logged reason; a failed
// account listing is an error for the whole account.
func DiscoverForks(ctx context.Context, client Lister, account string, opts Options) ([]model.ForkRecord, error) {
	repos, err := client.ListUserRepos(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("discover forks for %s: %w", account, err)
	}

	var forks []model.ForkRecord
	for _, repo := range repos {
		if !repo.Fork {
			continue
		}
		if repo.Archived || repo.Disabled {
			opts.logf("skipping %s/%s: archived or disabled", account, repo.Name)
			continue
		}
		if !MatchesFilters(repo.Name, opts.Include, opts.Exclude) {
			opts.logf("skipping %s/%s: filtered by name", account, repo.Name)
			continue
		}

		record, err := resolveUpstream(ctx, client, account, repo.Name)
		if err != nil {
			opts.logf("skipping %s/%s: %v", account, repo.Name, err)
			continue
		}
		forks = append(forks, record)
	}
	return forks, nil
}

func resolveUpstream(ctx context.Context, client Lister, account, name string) (model.ForkRecord, error) {
	detail, err := client.GetRepo(ctx, account, name)
	if err != nil {
		return model.ForkRecord{}, err
	}
	if detail.Parent == nil || detail.Parent.FullName == "" {
		// The API flags the repo as a fork but reports no parent.
		return model.ForkRecord{}, fmt.Errorf("orphaned fork: no parent repository")
	}
	defaultBranch := detail.Parent.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	return model.ForkRecord{
		RepoName:              name,
		Owner:                 account,
		UpstreamFullName:      detail.Parent.FullName,
		UpstreamDefaultBranch: defaultBranch,
	}, nil
}

// MatchesFilters applies include/exclude glob patterns to a repo name.
func MatchesFilters(name string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
