package daterange

import "time"

// Resolver maps natural-language date expressions to concrete calendar
// ranges. The reference date is injected by the caller instead of read from
// the system clock, so resolution is deterministic and testable.
type Resolver struct {
	tagger Tagger
}

// NewResolver creates a Resolver using the given tagger. A nil tagger
// falls back to the built-in RegexTagger.
func NewResolver(tagger Tagger) *Resolver {
	if tagger == nil {
		tagger = RegexTagger{}
	}
	return &Resolver{tagger: tagger}
}

// Resolve derives the date range implied by text, relative to ref.
//
// Expression classes in priority order, first match wins: an explicit
// 4-digit year, "last week", "this week", "last month", "this month",
// "this year". Weeks are ISO weeks (Monday to Sunday). Text with no
// recognized expression resolves to the unbounded range, never an error:
// a query with no temporal content still runs as a pure semantic search.
func (r *Resolver) Resolve(text string, ref time.Time) Range {
	phrases := r.tagger.Tag(text)
	if len(phrases) == 0 {
		return Unbounded()
	}

	// Pick the highest-priority phrase. Among several year tokens the
	// first one in text order wins.
	best := phrases[0]
	for _, p := range phrases[1:] {
		if p.Category < best.Category {
			best = p
		}
	}

	switch best.Category {
	case CategoryYear:
		return yearRange(best.Year)
	case CategoryLastWeek:
		start := isoWeekStart(ref).AddDate(0, 0, -7)
		return Between(start, start.AddDate(0, 0, 6))
	case CategoryThisWeek:
		start := isoWeekStart(ref)
		return Between(start, start.AddDate(0, 0, 6))
	case CategoryLastMonth:
		first := monthStart(ref).AddDate(0, -1, 0)
		return Between(first, first.AddDate(0, 1, -1))
	case CategoryThisMonth:
		first := monthStart(ref)
		return Between(first, first.AddDate(0, 1, -1))
	case CategoryThisYear:
		return yearRange(ref.Year())
	default:
		return Unbounded()
	}
}

// Resolve runs a one-off resolution with the default tagger.
func Resolve(text string, ref time.Time) Range {
	return NewResolver(nil).Resolve(text, ref)
}

func yearRange(year int) Range {
	return Between(
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
}

// isoWeekStart returns the Monday of ref's ISO week at date precision.
func isoWeekStart(ref time.Time) time.Time {
	day := atDate(ref)
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// monthStart returns the first day of ref's month at date precision.
// AddDate on the result is leap-year safe for month-end computation.
func monthStart(ref time.Time) time.Time {
	y, m, _ := ref.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
