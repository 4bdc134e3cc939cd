package engine_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dynacylabs/github-fork-syncer/internal/engine"
	"github.com/dynacylabs/github-fork-syncer/internal/github"
	"github.com/dynacylabs/github-fork-syncer/internal/model"
	"github.com/dynacylabs/github-fork-syncer/internal/pattern"
)

// fakeLister scripts the hosting API per account and per repo detail.
type fakeLister struct {
	repos   map[string][]github.Repo
	details map[string]*github.Repo
	listErr map[string]error
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		repos:   map[string][]github.Repo{},
		details: map[string]*github.Repo{},
		listErr: map[string]error{},
	}
}

func (f *fakeLister) ListUserRepos(ctx context.Context, account string) ([]github.Repo, error) {
	if err := f.listErr[account]; err != nil {
		return nil, err
	}
	return f.repos[account], nil
}

func (f *fakeLister) GetRepo(ctx context.Context, owner, name string) (*github.Repo, error) {
	repo := f.details[owner+"/"+name]
	if repo == nil {
		return nil, fmt.Errorf("not found: %s/%s", owner, name)
	}
	return repo, nil
}

// addFork registers a fork for the account together with its detail
// response pointing at parent/<name>.
func (f *fakeLister) addFork(account, name, parentDefault string) {
	f.repos[account] = append(f.repos[account], github.Repo{
		Name: name, FullName: account + "/" + name, Fork: true,
	})
	f.details[account+"/"+name] = &github.Repo{
		Name: name, FullName: account + "/" + name, Fork: true,
		Parent: &github.Repo{
			FullName:      "parent/" + name,
			DefaultBranch: parentDefault,
		},
	}
}

var _ = Describe("Engine", func() {
	const (
		token = "sekrit"
		store = "/store"
	)

	var (
		adapter *fakeAdapter
		lister  *fakeLister
		opts    engine.Options
	)

	// seedFork wires a fork into both the API fake and the adapter fake:
	// working copy present, origin and upstream remotes configured.
	seedFork := func(account, name string, originBranches, upstreamBranches []string) string {
		lister.addFork(account, name, "main")
		dir := store + "/" + account + "/" + name
		adapter.seedRepo(dir,
			"https://"+token+"@github.com/"+account+"/"+name+".git",
			"https://"+token+"@github.com/parent/"+name+".git",
			originBranches, upstreamBranches, originBranches)
		return dir
	}

	run := func() *model.RunSummary {
		eng := engine.New(opts, adapter, lister)
		return eng.Run(context.Background())
	}

	BeforeEach(func() {
		adapter = newFakeAdapter()
		lister = newFakeLister()
		opts = engine.Options{
			Accounts:    []string{"octo"},
			Token:       token,
			StorageRoot: store,
			Mode:        model.SyncModeDefault,
		}
	})

	Describe("end-to-end reconciliation", func() {
		It("syncs existing branches and creates missing ones in all mode", func() {
			opts.Mode = model.SyncModeAll
			opts.CreateNewBranches = true
			dirA := seedFork("octo", "alpha", []string{"main"}, []string{"main", "dev"})
			seedFork("octo", "beta", []string{"main"}, []string{"main"})

			summary := run()

			Expect(summary.ReposProcessed).To(Equal(2))
			Expect(summary.BranchesSynced).To(Equal(2))
			Expect(summary.BranchesCreated).To(Equal(1))
			Expect(summary.HasErrors()).To(BeFalse())

			alpha := summary.Forks[0]
			Expect(alpha.Branches).To(HaveLen(2))
			Expect(alpha.Branches[0].Branch).To(Equal("main"))
			Expect(alpha.Branches[0].Outcome).To(Equal(model.OutcomeSynced))
			Expect(alpha.Branches[1].Branch).To(Equal("dev"))
			Expect(alpha.Branches[1].Outcome).To(Equal(model.OutcomeCreated))

			Expect(adapter.calls).To(ContainElement("merge " + dirA + " upstream/main"))
			Expect(adapter.calls).To(ContainElement("push " + dirA + " origin main"))
			Expect(adapter.calls).To(ContainElement("checkout-new " + dirA + " dev upstream/dev"))
			Expect(adapter.calls).To(ContainElement("push-set-upstream " + dirA + " origin dev"))
		})

		It("only touches the default branch in default mode", func() {
			opts.CreateNewBranches = true
			dir := seedFork("octo", "alpha", []string{"main", "dev"}, []string{"main", "dev", "extra"})

			summary := run()

			Expect(summary.Forks[0].Branches).To(HaveLen(1))
			Expect(summary.Forks[0].Branches[0].Branch).To(Equal("main"))
			Expect(adapter.calls).NotTo(ContainElement("merge " + dir + " upstream/dev"))
			Expect(adapter.calls).NotTo(ContainElement("checkout-new " + dir + " extra upstream/extra"))
		})

		It("filters candidates by pattern in selective mode", func() {
			opts.Mode = model.SyncModeSelective
			opts.Patterns = pattern.ParseSet("release/*")
			dir := seedFork("octo", "alpha",
				[]string{"main", "release/1.0"},
				[]string{"main", "release/1.0", "hotfix/1"})

			summary := run()

			Expect(summary.Forks[0].Branches).To(HaveLen(1))
			Expect(summary.Forks[0].Branches[0].Branch).To(Equal("release/1.0"))
			Expect(adapter.calls).NotTo(ContainElement("merge " + dir + " upstream/main"))
			Expect(adapter.calls).NotTo(ContainElement("merge " + dir + " upstream/hotfix/1"))
		})

		It("marks upstream-only branches skipped when creation is disabled", func() {
			opts.Mode = model.SyncModeAll
			seedFork("octo", "alpha", []string{"main"}, []string{"main", "dev"})

			summary := run()

			Expect(summary.BranchesSkipped).To(Equal(1))
			Expect(summary.Forks[0].Branches[1].Outcome).To(Equal(model.OutcomeSkipped))
			Expect(adapter.callsWithPrefix("checkout-new")).To(BeEmpty())
		})

		It("parks the working copy back on the default branch", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			run()
			Expect(adapter.calls[len(adapter.calls)-1]).To(Equal("checkout " + dir + " main"))
		})
	})

	Describe("conflict and push recovery", func() {
		It("aborts a conflicted merge and continues with sibling branches", func() {
			opts.Mode = model.SyncModeAll
			dir := seedFork("octo", "alpha", []string{"apple", "banana"}, []string{"apple", "banana"})
			adapter.failOn("merge "+dir+" upstream/apple",
				errors.New("CONFLICT (content): Merge conflict in main.go\nAutomatic merge failed"))

			summary := run()

			Expect(adapter.calls).To(ContainElement("merge-abort " + dir))
			Expect(summary.Forks[0].Branches[0].Outcome).To(Equal(model.OutcomeFailed))
			Expect(summary.Forks[0].Branches[0].ErrorClass).To(Equal("conflict"))
			Expect(summary.Forks[0].Branches[1].Outcome).To(Equal(model.OutcomeSynced))
			Expect(summary.Errors).To(HaveLen(1))
			Expect(summary.Errors[0].Scope).To(Equal("octo/alpha#apple"))
		})

		It("retries a rejected push once with a lease", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("push "+dir+" origin main",
				errors.New("! [rejected] main -> main (non-fast-forward)"))

			summary := run()

			Expect(adapter.calls).To(ContainElement("push-with-lease " + dir + " origin main"))
			Expect(summary.Forks[0].Branches[0].Outcome).To(Equal(model.OutcomeSynced))
		})

		It("fails the branch when the lease retry is rejected too", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("push "+dir+" origin main",
				errors.New("! [rejected] main -> main (non-fast-forward)"))
			adapter.failOn("push-with-lease "+dir+" origin main",
				errors.New("! [rejected] main -> main (stale info)"))

			summary := run()
			Expect(summary.Forks[0].Branches[0].Outcome).To(Equal(model.OutcomeFailed))
			Expect(summary.HasErrors()).To(BeTrue())
		})

		It("does not retry non-rejection push failures", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("push "+dir+" origin main",
				errors.New("fatal: unable to access remote: Could not resolve host"))

			summary := run()
			Expect(adapter.callsWithPrefix("push-with-lease")).To(BeEmpty())
			Expect(summary.Forks[0].Branches[0].Outcome).To(Equal(model.OutcomeFailed))
		})

		It("rolls back a created branch whose push fails", func() {
			opts.Mode = model.SyncModeAll
			opts.CreateNewBranches = true
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main", "dev"})
			adapter.failOn("push-set-upstream "+dir+" origin dev",
				errors.New("remote: Permission denied"))

			summary := run()

			Expect(adapter.calls).To(ContainElement("checkout " + dir + " main"))
			Expect(adapter.calls).To(ContainElement("delete-branch " + dir + " dev"))
			Expect(summary.Forks[0].Branches[1].Outcome).To(Equal(model.OutcomeFailed))
			Expect(summary.BranchesCreated).To(Equal(0))
		})
	})

	Describe("fork and account scoping", func() {
		It("clones a missing working copy before syncing", func() {
			lister.addFork("octo", "alpha", "main")
			dir := store + "/octo/alpha"

			run()

			Expect(adapter.calls).To(ContainElement(
				"clone " + dir + " https://" + token + "@github.com/octo/alpha.git"))
			Expect(adapter.calls).To(ContainElement(
				"add-remote " + dir + " upstream https://" + token + "@github.com/parent/alpha.git"))
		})

		It("skips the fork when the clone fails, without blocking siblings", func() {
			lister.addFork("octo", "alpha", "main")
			seedFork("octo", "beta", []string{"main"}, []string{"main"})
			adapter.failOn("clone "+store+"/octo/alpha https://"+token+"@github.com/octo/alpha.git",
				errors.New("fatal: could not create work tree"))

			summary := run()

			Expect(summary.Forks[0].Skipped).To(BeTrue())
			Expect(summary.Forks[1].Branches[0].Outcome).To(Equal(model.OutcomeSynced))
			Expect(summary.Errors).To(HaveLen(1))
			Expect(summary.Errors[0].Scope).To(Equal("fork:octo/alpha"))
		})

		It("repoints a stale upstream remote", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.remotes[dir+"|upstream"] = "https://github.com/oldparent/alpha.git"

			run()

			Expect(adapter.calls).To(ContainElement(
				"set-remote-url " + dir + " upstream https://" + token + "@github.com/parent/alpha.git"))
		})

		It("treats a fork fetch failure as non-fatal but an upstream one as fatal", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("fetch "+dir+" origin", errors.New("could not resolve host"))

			summary := run()
			Expect(summary.Forks[0].Skipped).To(BeFalse())
			Expect(summary.Forks[0].Branches[0].Outcome).To(Equal(model.OutcomeSynced))

			adapter = newFakeAdapter()
			lister = newFakeLister()
			dir = seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("fetch "+dir+" upstream", errors.New("could not resolve host"))

			summary = run()
			Expect(summary.Forks[0].Skipped).To(BeTrue())
			Expect(summary.Forks[0].SkipReason).To(ContainSubstring("fetch upstream"))
		})

		It("records an account error and continues with other accounts", func() {
			opts.Accounts = []string{"octo", "hubot"}
			lister.listErr["octo"] = errors.New("api error: rate limited")
			seedFork("hubot", "gamma", []string{"main"}, []string{"main"})

			summary := run()

			Expect(summary.Errors).To(HaveLen(1))
			Expect(summary.Errors[0].Scope).To(Equal("account:octo"))
			Expect(summary.ReposProcessed).To(Equal(1))
			Expect(summary.BranchesSynced).To(Equal(1))
		})
	})

	Describe("credential redaction", func() {
		It("never records the token in summary errors", func() {
			dir := seedFork("octo", "alpha", []string{"main"}, []string{"main"})
			adapter.failOn("merge "+dir+" upstream/main",
				errors.New("fatal: unable to access 'https://"+token+"@github.com/parent/alpha.git'"))

			summary := run()

			Expect(summary.Errors).To(HaveLen(1))
			Expect(summary.Errors[0].Message).NotTo(ContainSubstring(token))
			Expect(summary.Errors[0].Message).To(ContainSubstring("***"))
		})
	})

	Describe("dry run", func() {
		It("reports would-be outcomes without mutating git state", func() {
			opts.Mode = model.SyncModeAll
			opts.CreateNewBranches = true
			opts.DryRun = true
			seedFork("octo", "alpha", []string{"main"}, []string{"main", "dev"})

			summary := run()

			Expect(summary.BranchesSynced).To(Equal(1))
			Expect(summary.BranchesCreated).To(Equal(1))
			for _, prefix := range []string{
				"clone", "checkout", "checkout-new", "reset-hard",
				"merge", "push", "push-set-upstream", "delete-branch",
				"add-remote", "set-remote-url",
			} {
				Expect(adapter.callsWithPrefix(prefix + " ")).To(BeEmpty(), prefix)
			}
		})

		It("skips an uncloned fork instead of cloning it", func() {
			opts.DryRun = true
			lister.addFork("octo", "alpha", "main")

			summary := run()

			Expect(summary.Forks[0].Skipped).To(BeTrue())
			Expect(adapter.callsWithPrefix("clone")).To(BeEmpty())
		})
	})
})
