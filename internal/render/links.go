package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nattapongw/dede-harvester/internal/harvest"
)

// neighborSelector names the container elements whose text gives an
// anchor its context: list items, paragraphs, and table cells on this
// portal regularly carry the year the anchor text itself omits.
const neighborSelector = "li, p, td, div"

var collapseWS = regexp.MustCompile(`\s+`)

// ExtractLinks pulls anchor records out of rendered HTML. Hrefs are
// resolved against pageURL, text and neighbor text are trimmed and
// whitespace-collapsed, and duplicate hrefs are dropped.
func ExtractLinks(html, pageURL, selector string) ([]harvest.LinkRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url %s: %w", pageURL, err)
	}

	scope := doc.Selection
	if selector != "" {
		if found := doc.Find(selector); found.Length() > 0 {
			scope = found
		}
	}

	seen := make(map[string]struct{})
	var records []harvest.LinkRecord
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		raw, _ := a.Attr("href")
		href := absoluteHref(base, raw)
		if href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		records = append(records, harvest.LinkRecord{
			Href:         href,
			Text:         cleanText(a.Text()),
			NeighborText: cleanText(a.Closest(neighborSelector).Text()),
		})
	})
	return records, nil
}

func absoluteHref(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

func cleanText(s string) string {
	return strings.TrimSpace(collapseWS.ReplaceAllString(s, " "))
}
