package sortutil

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dynacylabs/github-fork-syncer/internal/model"
)

var _ = Describe("SortForkReports", func() {
	report := func(owner, repo string) model.ForkReport {
		return model.ForkReport{Fork: model.ForkRecord{Owner: owner, RepoName: repo}}
	}

	It("orders by owner then repository name", func() {
		reports := []model.ForkReport{
			report("octo", "zeta"),
			report("hubot", "beta"),
			report("octo", "alpha"),
		}
		SortForkReports(reports)
		Expect(reports[0].Fork.FullName()).To(Equal("hubot/beta"))
		Expect(reports[1].Fork.FullName()).To(Equal("octo/alpha"))
		Expect(reports[2].Fork.FullName()).To(Equal("octo/zeta"))
	})

	It("is stable for identical keys", func() {
		reports := []model.ForkReport{
			{Fork: model.ForkRecord{Owner: "octo", RepoName: "same"}, SkipReason: "first"},
			{Fork: model.ForkRecord{Owner: "octo", RepoName: "same"}, SkipReason: "second"},
		}
		SortForkReports(reports)
		Expect(reports[0].SkipReason).To(Equal("first"))
	})
})

var _ = Describe("LessOwnerRepo", func() {
	It("compares owners before repository names", func() {
		Expect(LessOwnerRepo("a", "z", "b", "a")).To(BeTrue())
		Expect(LessOwnerRepo("b", "a", "a", "z")).To(BeFalse())
		Expect(LessOwnerRepo("a", "x", "a", "y")).To(BeTrue())
	})
})
