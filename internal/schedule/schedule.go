package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Spec is a parsed five-field schedule: minute, hour, day-of-month, month,
// day-of-week. Immutable once parsed.
type Spec struct {
	Minute     Field
	Hour       Field
	DayOfMonth Field
	Month      Field
	DayOfWeek  Field

	raw string
}

// Parse splits a schedule expression into its five fields. Individual field
// errors do not abort parsing: the affected field is left in its
// never-matching zero state and the errors are returned alongside the Spec
// so callers can log them. A wrong field count is fatal.
func Parse(raw string) (*Spec, []error) {
	fields := strings.Fields(raw)
	if len(fields) != 5 {
		return nil, []error{fmt.Errorf("schedule %q: expected 5 fields, got %d", raw, len(fields))}
	}

	spec := &Spec{raw: raw}
	var errs []error
	parse := func(name, expr string, min, max int) Field {
		f, err := ParseField(expr, min, max)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s field: %w", name, err))
			return Field{}
		}
		return f
	}

	spec.Minute = parse("minute", fields[0], 0, 59)
	spec.Hour = parse("hour", fields[1], 0, 23)
	spec.DayOfMonth = parse("day-of-month", fields[2], 1, 31)
	spec.Month = parse("month", fields[3], 1, 12)
	spec.DayOfWeek = parse("day-of-week", fields[4], 0, 7)
	return spec, errs
}

// String returns the original schedule expression.
func (s *Spec) String() string { return s.raw }

// IsDue reports whether all five fields match the given time. Day-of-month
// and day-of-week must both match; cron's historical OR-when-both-restricted
// rule is deliberately not implemented. Day-of-week 7 is treated as 0.
func (s *Spec) IsDue(now time.Time) bool {
	if s == nil {
		return false
	}
	if !s.Minute.Matches(now.Minute()) {
		return false
	}
	if !s.Hour.Matches(now.Hour()) {
		return false
	}
	if !s.DayOfMonth.Matches(now.Day()) {
		return false
	}
	if !s.Month.Matches(int(now.Month())) {
		return false
	}
	return s.matchesDayOfWeek(int(now.Weekday()))
}

func (s *Spec) matchesDayOfWeek(weekday int) bool {
	if s.DayOfWeek.Matches(weekday) {
		return true
	}
	// Sunday is addressable as both 0 and 7.
	return weekday == 0 && s.DayOfWeek.Matches(7)
}
