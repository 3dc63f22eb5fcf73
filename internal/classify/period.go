package classify

import (
	"strconv"
	"strings"
)

// Period labels how much of a year a report covers.
type Period string

// Period values, ordered from most to least specific.
const (
	PeriodAnnual  Period = "annual"
	PeriodHalf    Period = "half"
	PeriodMonthly Period = "monthly"
	PeriodUnknown Period = "unknown"
)

// DefaultMonthWindow is how far (in characters) a month name may sit from
// a year mention and still mark that link as a single-month report.
// Tuned against the DEDE portal markup, same caveat as DefaultYearWindow.
const DefaultMonthWindow = 25

// Classifier labels a link as annual, half-year, monthly, or unknown.
// It is stateless; the zero value uses DefaultMonthWindow.
type Classifier struct {
	// MonthWindow overrides DefaultMonthWindow when > 0.
	MonthWindow int
}

// Classify applies ordered heuristics to the combined link signals, first
// match wins. resolvedYear is the Resolver's output for the same link;
// yearKnown is false when no year token was found anywhere, in which case
// the text-only rules still apply.
//
// Unknown is the fail-safe result: ambiguous links are never retrieved as
// if they were annual.
func (c Classifier) Classify(text, href, neighborText string, resolvedYear int, yearKnown bool) Period {
	combined := strings.ToLower(strings.Join([]string{
		FilenameFromHref(href), text, neighborText,
	}, "\n"))

	if fullYearSpanRe.MatchString(combined) {
		return PeriodAnnual
	}
	if halfYearSpanRe.MatchString(combined) || halfYearTokenRe.MatchString(combined) {
		return PeriodHalf
	}

	months := monthMentions(combined)
	if c.isMonthly(combined, months, resolvedYear, yearKnown) {
		return PeriodMonthly
	}
	if annualKeywordRe.MatchString(combined) {
		return PeriodAnnual
	}
	if len(months) == 0 {
		// No month granularity anywhere means an annual report.
		return PeriodAnnual
	}
	return PeriodUnknown
}

// isMonthly reports whether the link looks like a single-month report:
// a month name appears, exactly one distinct year is mentioned, that year
// is the resolved year, and a non-December month name sits within the
// month window of a year mention. December is excluded because "December
// 2567" on this portal marks an annual year-end cutoff.
func (c Classifier) isMonthly(combined string, months []monthMention, resolvedYear int, yearKnown bool) bool {
	if len(months) == 0 || !yearKnown {
		return false
	}
	years := distinctYears(combined)
	if len(years) != 1 {
		return false
	}
	if _, ok := years[resolvedYear]; !ok {
		return false
	}

	window := c.MonthWindow
	if window <= 0 {
		window = DefaultMonthWindow
	}
	for _, loc := range yearTokens(combined) {
		for _, m := range months {
			if m.december {
				continue
			}
			if runeGap(combined, loc, []int{m.start, m.end}) <= window {
				return true
			}
		}
	}
	return false
}

// distinctYears returns the set of Gregorian years mentioned in s, with
// BE tokens normalized so "2567" and "2024" count as one year.
func distinctYears(s string) map[int]struct{} {
	out := make(map[int]struct{})
	for _, loc := range yearTokens(s) {
		raw, err := strconv.Atoi(s[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		out[normalizeYear(raw)] = struct{}{}
	}
	return out
}
