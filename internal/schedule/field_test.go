package schedule_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dynacylabs/github-fork-syncer/internal/schedule"
)

var _ = Describe("ParseField", func() {
	It("parses a wildcard", func() {
		f, err := schedule.ParseField("*", 0, 59)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind).To(Equal(schedule.KindWildcard))
	})

	It("parses a step", func() {
		f, err := schedule.ParseField("*/15", 0, 59)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind).To(Equal(schedule.KindStep))
		Expect(f.Step).To(Equal(15))
	})

	It("parses a range", func() {
		f, err := schedule.ParseField("9-17", 0, 23)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind).To(Equal(schedule.KindRange))
		Expect(f.Lo).To(Equal(9))
		Expect(f.Hi).To(Equal(17))
	})

	It("parses a list", func() {
		f, err := schedule.ParseField("1,15,30", 0, 59)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind).To(Equal(schedule.KindList))
		Expect(f.Values).To(Equal([]int{1, 15, 30}))
	})

	It("parses a literal", func() {
		f, err := schedule.ParseField("30", 0, 59)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind).To(Equal(schedule.KindLiteral))
		Expect(f.Value).To(Equal(30))
	})

	It("normalizes leading zeros", func() {
		f, err := schedule.ParseField("05", 0, 59)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Value).To(Equal(5))
		Expect(f.Matches(5)).To(BeTrue())
	})

	It("rejects values outside bounds", func() {
		_, err := schedule.ParseField("61", 0, 59)
		Expect(err).To(HaveOccurred())
		_, err = schedule.ParseField("0", 1, 31)
		Expect(err).To(HaveOccurred())
	})

	It("rejects inverted ranges", func() {
		_, err := schedule.ParseField("20-10", 0, 59)
		Expect(err).To(HaveOccurred())
	})

	It("rejects garbage", func() {
		for _, bad := range []string{"", "abc", "*/0x", "1-2-3", "1,,x"} {
			_, err := schedule.ParseField(bad, 0, 59)
			Expect(err).To(HaveOccurred(), "expected error for %q", bad)
		}
	})
})

var _ = Describe("Field.Matches", func() {
	It("matches every value for a wildcard", func() {
		f, _ := schedule.ParseField("*", 0, 59)
		for v := 0; v <= 59; v++ {
			Expect(f.Matches(v)).To(BeTrue())
		}
	})

	It("matches step values by modulo", func() {
		f, _ := schedule.ParseField("*/15", 0, 59)
		for v := 0; v <= 59; v++ {
			Expect(f.Matches(v)).To(Equal(v%15 == 0), "value %d", v)
		}
	})

	It("matches range bounds inclusively", func() {
		f, _ := schedule.ParseField("9-17", 0, 23)
		Expect(f.Matches(8)).To(BeFalse())
		Expect(f.Matches(9)).To(BeTrue())
		Expect(f.Matches(17)).To(BeTrue())
		Expect(f.Matches(18)).To(BeFalse())
	})

	It("matches list membership exactly", func() {
		f, _ := schedule.ParseField("1,15,30", 0, 59)
		Expect(f.Matches(15)).To(BeTrue())
		Expect(f.Matches(16)).To(BeFalse())
	})

	It("never matches the zero field", func() {
		var f schedule.Field
		for v := 0; v <= 59; v++ {
			Expect(f.Matches(v)).To(BeFalse())
		}
	})
})
