package classify

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultYearWindow is how far (in characters) a year token may sit from a
// full-year span phrase and still be treated as the span's nominal year.
// Tuned against the DEDE portal markup; override via configuration when
// pointing the harvester at a differently formatted source.
const DefaultYearWindow = 40

// Resolver extracts a publication year from the noisy signals around a
// report link. It is stateless; the zero value uses DefaultYearWindow.
type Resolver struct {
	// YearWindow overrides DefaultYearWindow when > 0.
	YearWindow int
}

// yearMatch is one 4-digit token found in a candidate source.
type yearMatch struct {
	year     int // Gregorian, BE already normalized
	source   int // index into the candidate sources, 0 = filename
	start    int
	end      int
	nearSpan bool
}

// Resolve returns the publication year for a link, or false when no
// 4-digit year token appears in the filename, link text, or neighbor text.
//
// Real filenames often carry two years, the report year and a "last
// updated" year. Three tie-breaks encode the portal's conventions: a year
// sitting next to a January-December span phrase wins (smallest such),
// then years found in the decoded filename, then the smallest year seen
// anywhere.
func (r Resolver) Resolve(text, href, neighborText string) (int, bool) {
	sources := []string{
		strings.ToLower(FilenameFromHref(href)),
		strings.ToLower(text),
		strings.ToLower(neighborText),
	}

	window := r.YearWindow
	if window <= 0 {
		window = DefaultYearWindow
	}

	var matches []yearMatch
	for si, src := range sources {
		spans := fullYearSpanRe.FindAllStringIndex(src, -1)
		for _, loc := range yearTokens(src) {
			raw, err := strconv.Atoi(src[loc[0]:loc[1]])
			if err != nil {
				continue
			}
			matches = append(matches, yearMatch{
				year:     normalizeYear(raw),
				source:   si,
				start:    loc[0],
				end:      loc[1],
				nearSpan: anySpanNear(src, spans, loc[0], loc[1], window),
			})
		}
	}
	if len(matches) == 0 {
		return 0, false
	}

	if y, ok := smallest(matches, func(m yearMatch) bool { return m.nearSpan }); ok {
		return y, true
	}
	if y, ok := smallest(matches, func(m yearMatch) bool { return m.source == 0 }); ok {
		return y, true
	}
	y, _ := smallest(matches, func(yearMatch) bool { return true })
	return y, true
}

// FilenameFromHref returns the decoded final path segment of href, or ""
// when the URL has no usable path.
func FilenameFromHref(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	base := path.Base(u.Path)
	if decoded, decErr := url.PathUnescape(base); decErr == nil {
		return decoded
	}
	return base
}

func anySpanNear(src string, spans [][]int, start, end, window int) bool {
	for _, span := range spans {
		if runeGap(src, span, []int{start, end}) <= window {
			return true
		}
	}
	return false
}

// runeGap measures the distance between two byte-offset intervals in
// characters, not bytes; Thai text is three bytes per rune and a byte
// window would be three times too strict there.
func runeGap(src string, a, b []int) int {
	switch {
	case a[1] <= b[0]:
		return utf8.RuneCountInString(src[a[1]:b[0]])
	case b[1] <= a[0]:
		return utf8.RuneCountInString(src[b[1]:a[0]])
	default:
		return 0 // overlapping
	}
}

func smallest(matches []yearMatch, keep func(yearMatch) bool) (int, bool) {
	best, found := 0, false
	for _, m := range matches {
		if !keep(m) {
			continue
		}
		if !found || m.year < best {
			best, found = m.year, true
		}
	}
	return best, found
}
