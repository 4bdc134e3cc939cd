package sortutil

import (
	"sort"

	"github.com/dynacylabs/github-fork-syncer/internal/model"
)

// LessOwnerRepo provides deterministic ordering by owner account first,
// then by repository name.
func LessOwnerRepo(ownerI, repoI, ownerJ, repoJ string) bool {
	if ownerI == ownerJ {
		return repoI < repoJ
	}
	return ownerI < ownerJ
}

// SortForkReports orders fork reports by owner, then repository name.
func SortForkReports(reports []model.ForkReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return LessOwnerRepo(reports[i].Fork.Owner, reports[i].Fork.RepoName,
			reports[j].Fork.Owner, reports[j].Fork.RepoName)
	})
}
