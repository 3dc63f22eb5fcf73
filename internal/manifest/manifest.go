// Package manifest persists the record of every report file already
// retrieved, keyed by product and source href. The manifest is what makes
// repeated harvester runs idempotent: re-running the batch is the retry
// mechanism, and the manifest is how a rerun knows what to skip.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Entry records the outcome of one successful retrieval.
type Entry struct {
	Title         string    `json:"title"`
	Href          string    `json:"href"`
	SavedPath     string    `json:"saved_path"`
	YearGregorian int       `json:"year_gregorian,omitempty"`
	YearBuddhist  int       `json:"year_buddhist,omitempty"`
	SavedAt       time.Time `json:"saved_at"`
}

// Manifest is the full idempotence ledger, persisted as one JSON document.
// It grows monotonically and is never pruned; stale entries pointing at
// deleted years are not an error.
type Manifest struct {
	Items map[string]Entry `json:"items"`
}

// Key builds the manifest key for a product/href pair. Two different
// links resolving to the same year get independent entries.
func Key(product, href string) string {
	return product + "::" + href
}

// Store owns the on-disk manifest document. No other component writes it.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore returns a store persisting the manifest at path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the manifest file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest from disk. A missing or unreadable manifest is
// never an error: the harvester simply starts from an empty ledger and
// re-retrieves what it must.
func (s *Store) Load() Manifest {
	m := Manifest{Items: make(map[string]Entry)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Manifest unreadable; starting empty", zap.String("path", s.path), zap.Error(err))
		}
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("Manifest corrupt; starting empty", zap.String("path", s.path), zap.Error(err))
		return Manifest{Items: make(map[string]Entry)}
	}
	if m.Items == nil {
		m.Items = make(map[string]Entry)
	}
	return m
}

// Save rewrites the full manifest document.
func (s *Store) Save(m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create manifest dir for %s: %w", s.path, err)
	}
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write manifest %s: %w", s.path, err)
	}
	return nil
}

// Has reports whether key was already retrieved AND its saved file still
// exists on disk. An entry whose file was deleted externally counts as
// absent, forcing re-retrieval.
func (s *Store) Has(m Manifest, key string) bool {
	entry, ok := m.Items[key]
	if !ok || entry.SavedPath == "" {
		return false
	}
	if _, err := os.Stat(entry.SavedPath); err != nil {
		return false
	}
	return true
}
