package daterange

import (
	"regexp"
	"strconv"
	"strings"
)

// Category identifies a recognized class of date expression. Lower values
// take priority when a query mentions several expressions at once.
type Category int

const (
	CategoryYear Category = iota // an explicit 4-digit year, e.g. "2023"
	CategoryLastWeek
	CategoryThisWeek
	CategoryLastMonth
	CategoryThisMonth
	CategoryThisYear
)

// Phrase is a date expression found in query text. Year is only set for
// CategoryYear.
type Phrase struct {
	Category Category
	Year     int
}

// Tagger identifies date phrases in free text. It is the delegation point
// for linguistic entity extraction: the resolver only owns the mapping from
// a recognized phrase category to a concrete calendar range, so a smarter
// NLP tagger can be swapped in without touching the calendar arithmetic.
type Tagger interface {
	Tag(text string) []Phrase
}

// yearPattern accepts 4-digit tokens in 1000-2999 so arbitrary numbers
// ("500 patients") are not mistaken for years.
var yearPattern = regexp.MustCompile(`\b([12]\d{3})\b`)

// relativePhrases in resolution priority order.
var relativePhrases = []struct {
	text     string
	category Category
}{
	{"last week", CategoryLastWeek},
	{"this week", CategoryThisWeek},
	{"last month", CategoryLastMonth},
	{"this month", CategoryThisMonth},
	{"this year", CategoryThisYear},
}

// RegexTagger is the default Tagger. It matches the enumerated relative
// phrases by substring and explicit years by token pattern, which is all
// the supported expression classes require.
type RegexTagger struct{}

// Tag returns every recognized date phrase in text. Year phrases come
// first in text order, then relative phrases in priority order.
func (RegexTagger) Tag(text string) []Phrase {
	lowered := strings.ToLower(text)

	var phrases []Phrase
	for _, match := range yearPattern.FindAllString(lowered, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		phrases = append(phrases, Phrase{Category: CategoryYear, Year: year})
	}

	for _, rp := range relativePhrases {
		if strings.Contains(lowered, rp.text) {
			phrases = append(phrases, Phrase{Category: rp.category})
		}
	}

	return phrases
}
