// Package harvest implements the retrieval pipeline and the two-level
// crawl orchestrator that walks a hub page, classifies every link it
// finds, and downloads each annual report exactly once.
package harvest

import (
	"github.com/nattapongw/dede-harvester/internal/classify"
)

// LinkRecord is one raw anchor captured from a rendered page. Href is
// absolute, Text is the trimmed anchor text, and NeighborText is the text
// of the smallest enclosing list/paragraph/cell container, which often
// carries the year or period the anchor text alone lacks. Records are
// immutable once captured.
type LinkRecord struct {
	Href         string
	Text         string
	NeighborText string
}

// ResolvedLink is a LinkRecord with its classification attached. Year is
// nil when no year token was found. A ResolvedLink is never mutated; a
// link that needs reclassification (an article link followed to its file
// link) produces a new one.
type ResolvedLink struct {
	LinkRecord
	Year   *int
	Period classify.Period
}

// ResolveLink runs the year resolver and period classifier over one raw
// link record.
func ResolveLink(rec LinkRecord, resolver classify.Resolver, classifier classify.Classifier) ResolvedLink {
	year, ok := resolver.Resolve(rec.Text, rec.Href, rec.NeighborText)
	resolved := ResolvedLink{
		LinkRecord: rec,
		Period:     classifier.Classify(rec.Text, rec.Href, rec.NeighborText, year, ok),
	}
	if ok {
		resolved.Year = &year
	}
	return resolved
}
