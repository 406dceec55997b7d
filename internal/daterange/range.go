package daterange

import (
	"fmt"
	"time"
)

// Range is an inclusive publication-date window. A nil bound means the
// window is open on that side; a Range with both bounds nil is unbounded
// and matches every date. When both bounds are set, Start <= End.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Unbounded returns the range that matches every date.
func Unbounded() Range {
	return Range{}
}

// Between builds an inclusive range from two dates, normalized to
// date precision in UTC.
func Between(start, end time.Time) Range {
	s := atDate(start)
	e := atDate(end)
	return Range{Start: &s, End: &e}
}

// IsUnbounded reports whether the range matches every date.
func (r Range) IsUnbounded() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether d falls inside the range. Comparison is at
// date precision; the time-of-day component of d is ignored.
func (r Range) Contains(d time.Time) bool {
	day := atDate(d)
	if r.Start != nil && day.Before(*r.Start) {
		return false
	}
	if r.End != nil && day.After(*r.End) {
		return false
	}
	return true
}

// String renders the range for logs and cache keys.
func (r Range) String() string {
	if r.IsUnbounded() {
		return "unbounded"
	}
	format := func(t *time.Time) string {
		if t == nil {
			return "open"
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("[%s, %s]", format(r.Start), format(r.End))
}

// atDate truncates a timestamp to midnight UTC of its calendar date.
func atDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
