package harvest

import (
	"regexp"
	"strings"

	"github.com/nattapongw/dede-harvester/internal/classify"
)

var (
	illegalPathChars = regexp.MustCompile(`[\\/:*?"<>|[:cntrl:]]+`)
	multiSpace       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a downloaded filename safe to write on any
// filesystem: runs of whitespace collapse to a single space and
// path-illegal characters become underscores. Whitespace collapses
// first; tabs and newlines are also control characters and would turn
// into underscores otherwise. Thai characters pass through untouched so
// filenames stay recognizable.
func SanitizeFilename(name string) string {
	name = multiSpace.ReplaceAllString(name, " ")
	name = illegalPathChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " ._")
	if name == "" {
		return "file"
	}
	return name
}

// filenameForLink returns the sanitized original filename for a link,
// falling back to a constant when the URL has no path segment.
func filenameForLink(href string) string {
	return SanitizeFilename(classify.FilenameFromHref(href))
}
