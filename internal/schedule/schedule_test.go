package schedule_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dynacylabs/github-fork-syncer/internal/schedule"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

var _ = Describe("Parse", func() {
	It("accepts a five-field expression", func() {
		spec, errs := schedule.Parse("0 0 * * *")
		Expect(errs).To(BeEmpty())
		Expect(spec).NotTo(BeNil())
	})

	It("rejects wrong field counts", func() {
		spec, errs := schedule.Parse("0 0 * *")
		Expect(spec).To(BeNil())
		Expect(errs).To(HaveLen(1))
	})

	It("keeps parsing after a bad field and fails that field closed", func() {
		spec, errs := schedule.Parse("bogus * * * *")
		Expect(spec).NotTo(BeNil())
		Expect(errs).To(HaveLen(1))
		// The malformed minute field never matches, so the spec is never due.
		for minute := 0; minute < 60; minute++ {
			Expect(spec.IsDue(at(2026, time.March, 4, 12, minute))).To(BeFalse())
		}
	})
})

var _ = Describe("Spec.IsDue", func() {
	It("fires daily at midnight only", func() {
		spec, errs := schedule.Parse("0 0 * * *")
		Expect(errs).To(BeEmpty())
		Expect(spec.IsDue(at(2026, time.March, 4, 0, 0))).To(BeTrue())
		Expect(spec.IsDue(at(2026, time.July, 19, 0, 0))).To(BeTrue())
		Expect(spec.IsDue(at(2026, time.March, 4, 0, 1))).To(BeFalse())
		Expect(spec.IsDue(at(2026, time.March, 4, 1, 0))).To(BeFalse())
	})

	It("fires every fifteen minutes", func() {
		spec, errs := schedule.Parse("*/15 * * * *")
		Expect(errs).To(BeEmpty())
		for minute := 0; minute < 60; minute++ {
			due := spec.IsDue(at(2026, time.March, 4, 9, minute))
			Expect(due).To(Equal(minute%15 == 0), "minute %d", minute)
		}
	})

	It("treats day-of-week 7 as Sunday", func() {
		spec7, errs := schedule.Parse("0 0 * * 7")
		Expect(errs).To(BeEmpty())
		spec0, errs := schedule.Parse("0 0 * * 0")
		Expect(errs).To(BeEmpty())

		sunday := at(2026, time.March, 1, 0, 0)
		Expect(sunday.Weekday()).To(Equal(time.Sunday))
		Expect(spec7.IsDue(sunday)).To(BeTrue())
		Expect(spec0.IsDue(sunday)).To(BeTrue())

		monday := sunday.AddDate(0, 0, 1)
		Expect(spec7.IsDue(monday)).To(BeFalse())
		Expect(spec0.IsDue(monday)).To(BeFalse())
	})

	It("requires day-of-month and day-of-week to both match", func() {
		// Standard cron treats dom OR dow when both are restricted; this
		// evaluator deliberately requires both.
		spec, errs := schedule.Parse("0 0 1 * 1")
		Expect(errs).To(BeEmpty())

		// 2026-06-01 is both the 1st and a Monday.
		bothMatch := at(2026, time.June, 1, 0, 0)
		Expect(bothMatch.Weekday()).To(Equal(time.Monday))
		Expect(spec.IsDue(bothMatch)).To(BeTrue())

		// 2026-03-01 is the 1st but a Sunday.
		domOnly := at(2026, time.March, 1, 0, 0)
		Expect(spec.IsDue(domOnly)).To(BeFalse())

		// 2026-03-02 is a Monday but not the 1st.
		dowOnly := at(2026, time.March, 2, 0, 0)
		Expect(dowOnly.Weekday()).To(Equal(time.Monday))
		Expect(spec.IsDue(dowOnly)).To(BeFalse())
	})

	It("restricts by month", func() {
		spec, errs := schedule.Parse("0 0 * 6 *")
		Expect(errs).To(BeEmpty())
		Expect(spec.IsDue(at(2026, time.June, 10, 0, 0))).To(BeTrue())
		Expect(spec.IsDue(at(2026, time.July, 10, 0, 0))).To(BeFalse())
	})

	It("is never due for a nil spec", func() {
		var spec *schedule.Spec
		Expect(spec.IsDue(time.Now())).To(BeFalse())
	})
})
