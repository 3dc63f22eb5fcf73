// Package classify implements the year and period heuristics applied to
// report links scraped from Thai government statistics portals. Link text,
// filenames, and surrounding markup mix English and Thai month names and
// both Gregorian and Buddhist Era years; everything here works on
// lower-cased text and normalizes BE years to Gregorian.
package classify

import "regexp"

// beOffset converts a Buddhist Era year to Gregorian.
const beOffset = 543

// yearTokenRe matches 4-digit Gregorian (2000-2099) or BE (2500-2599)
// digit runs. Underscore is a regexp word character, so a \b anchor
// would miss years glued into snake_case filenames; yearTokens guards
// candidate matches against adjacent digits instead.
var yearTokenRe = regexp.MustCompile(`20[0-9]{2}|25[0-9]{2}`)

// fullYearSpanRe recognizes "January ... December" phrases in English and
// Thai, including the dotted Thai abbreviations used in filenames.
var fullYearSpanRe = regexp.MustCompile(
	`(?i)(january|jan\.?|มกราคม|ม\.ค\.?)[\s_]*(?:-|–|—|to|thru|through|ถึง)?[\s_]*(december|dec\.?|ธันวาคม|ธ\.ค\.?)`)

// halfYearSpanRe recognizes "January ... June" phrases the same way.
var halfYearSpanRe = regexp.MustCompile(
	`(?i)(january|jan\.?|มกราคม|ม\.ค\.?)[\s_]*(?:-|–|—|to|thru|through|ถึง)?[\s_]*(june|jun\.?|มิถุนายน|มิ\.ย\.?)`)

// halfYearTokenRe matches explicit half-year wording with no month span.
var halfYearTokenRe = regexp.MustCompile(`(?i)ครึ่งปี(แรก|หลัง)?|ครึ่งแรก|ครึ่งหลัง|semi[-\s]?annual|half[-\s]?year`)

// annualKeywordRe matches report-type names that only ever label annual
// publications on the source portals.
var annualKeywordRe = regexp.MustCompile(
	`(?i)annual|yearbook|ประจำปี|รายปี|ทั้งปี|ตลอดปี|energy\s+balance|สถิติพลังงานของประเทศไทย`)

// monthRe lists every month mention we recognize: full English names,
// full Thai names, and dotted Thai abbreviations. Offsets of matches are
// used for the proximity rule, so all forms live in one pattern.
var monthRe = regexp.MustCompile(`(?i)january|february|march|april|may|june|july|august|september|october|november|december|` +
	`มกราคม|กุมภาพันธ์|มีนาคม|เมษายน|พฤษภาคม|มิถุนายน|กรกฎาคม|สิงหาคม|กันยายน|ตุลาคม|พฤศจิกายน|ธันวาคม|` +
	`ม\.ค\.|ก\.พ\.|มี\.ค\.|เม\.ย\.|พ\.ค\.|มิ\.ย\.|ก\.ค\.|ส\.ค\.|ก\.ย\.|ต\.ค\.|พ\.ย\.|ธ\.ค\.`)

// decemberRe identifies December mentions, which are excluded from the
// single-month proximity rule: a lone December next to the report year is
// a year-end cutoff, not a monthly report.
var decemberRe = regexp.MustCompile(`(?i)december|dec\.|ธันวาคม|ธ\.ค\.`)

// monthMention is one recognized month name with its byte offsets.
type monthMention struct {
	start    int
	end      int
	december bool
}

func monthMentions(s string) []monthMention {
	idxs := monthRe.FindAllStringIndex(s, -1)
	if len(idxs) == 0 {
		return nil
	}
	out := make([]monthMention, 0, len(idxs))
	for _, span := range idxs {
		name := s[span[0]:span[1]]
		out = append(out, monthMention{
			start:    span[0],
			end:      span[1],
			december: decemberRe.MatchString(name),
		})
	}
	return out
}

// yearTokens returns the byte-offset intervals of standalone year tokens
// in s. A match that extends a longer digit run (a phone number, a file
// id) is not a year.
func yearTokens(s string) [][]int {
	var out [][]int
	for _, loc := range yearTokenRe.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && isDigit(s[loc[0]-1]) {
			continue
		}
		if loc[1] < len(s) && isDigit(s[loc[1]]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// normalizeYear converts a raw 4-digit token to a Gregorian year.
func normalizeYear(raw int) int {
	if raw >= 2500 && raw < 2600 {
		return raw - beOffset
	}
	return raw
}
