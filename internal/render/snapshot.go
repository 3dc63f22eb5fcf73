package render

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// saveSnapshot persists the rendered HTML for offline inspection. A
// snapshot failure never fails the render; debugging output is best
// effort.
func (r *Renderer) saveSnapshot(pageURL, html string) {
	if err := os.MkdirAll(r.debugDir, 0o750); err != nil {
		r.logger.Warn("Failed to create debug dir", zap.String("dir", r.debugDir), zap.Error(err))
		return
	}
	target := filepath.Join(r.debugDir, snapshotName(pageURL))
	if err := os.WriteFile(target, []byte(html), 0o600); err != nil {
		r.logger.Warn("Failed to write debug snapshot", zap.String("path", target), zap.Error(err))
		return
	}
	r.logger.Debug("Debug snapshot written", zap.String("path", target))
}

// snapshotName builds a stable, filesystem-safe name for a page URL. The
// short hash keeps two pages with the same path but different queries
// from clobbering each other.
func snapshotName(raw string) string {
	host, p := "page", ""
	if u, err := url.Parse(raw); err == nil {
		host = invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
		p = invalidFilenameChars.ReplaceAllString(strings.Trim(u.EscapedPath(), "/"), "_")
	}
	if p == "" {
		p = "root"
	}
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s_%s_%s.html", host, p, hex.EncodeToString(sum[:])[:16])
}
