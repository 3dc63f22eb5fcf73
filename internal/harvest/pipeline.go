package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/manifest"
)

// Outcome is what the pipeline did (or deliberately did not do) for one
// link.
type Outcome string

// Pipeline outcomes recorded in the run catalog.
const (
	OutcomeRetrieved     Outcome = "retrieved"
	OutcomeSkippedOnDisk Outcome = "skipped-already-saved"
	OutcomeSkippedYear   Outcome = "skipped-below-min-year"
)

// buddhistOffset converts a Gregorian year back to Buddhist Era for the
// manifest entry.
const buddhistOffset = 543

// PipelineConfig carries the knobs the retrieval pipeline needs.
type PipelineConfig struct {
	// OutputRoot is the directory report files are written under.
	OutputRoot string
	// Product names the sub-folder and the manifest key prefix.
	Product string
	// MinYear rejects links whose resolved year falls before it.
	MinYear int
	// ForceRefresh re-fetches links the manifest already records.
	ForceRefresh bool
}

// Pipeline turns a classified link into a persisted file. It owns the
// decision of whether a given ResolvedLink requires I/O; the manifest
// store owns the ledger itself.
type Pipeline struct {
	cfg     PipelineConfig
	store   *manifest.Store
	fetcher Fetcher
	clock   Clock
	logger  *zap.Logger
}

// NewPipeline builds a retrieval pipeline.
func NewPipeline(cfg PipelineConfig, store *manifest.Store, fetcher Fetcher, clock Clock, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		clock:   clock,
		logger:  logger,
	}
}

// RetrieveIfNeeded fetches and persists one annual report unless the
// manifest already records it. The manifest is reloaded before every
// decision and rewritten immediately after every successful retrieval, so
// a crash mid-run loses at most the entry in flight.
func (p *Pipeline) RetrieveIfNeeded(ctx context.Context, link ResolvedLink, referrer string) (Outcome, error) {
	if link.Year != nil && *link.Year < p.cfg.MinYear {
		p.logger.Debug("Skipping link below minimum year",
			zap.String("href", link.Href), zap.Int("year", *link.Year), zap.Int("min_year", p.cfg.MinYear))
		return OutcomeSkippedYear, nil
	}

	dest := p.destinationPath(link)
	key := manifest.Key(p.cfg.Product, link.Href)

	m := p.store.Load()
	if p.store.Has(m, key) && !p.cfg.ForceRefresh {
		p.logger.Info("Already retrieved; skipping",
			zap.String("href", link.Href), zap.String("saved_path", m.Items[key].SavedPath))
		return OutcomeSkippedOnDisk, nil
	}

	body, err := p.fetcher.Fetch(ctx, link.Href, referrer)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", link.Href, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", fmt.Errorf("create report dir for %s: %w", dest, err)
	}
	// Bytes are written exactly as retrieved; no transformation.
	if err := os.WriteFile(dest, body, 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", dest, err)
	}

	entry := manifest.Entry{
		Title:     link.Text,
		Href:      link.Href,
		SavedPath: dest,
		SavedAt:   p.clock.Now(),
	}
	if link.Year != nil {
		entry.YearGregorian = *link.Year
		entry.YearBuddhist = *link.Year + buddhistOffset
	}
	m.Items[key] = entry
	if err := p.store.Save(m); err != nil {
		return "", fmt.Errorf("persist manifest: %w", err)
	}

	p.logger.Info("Retrieved report",
		zap.String("href", link.Href),
		zap.String("saved_path", dest),
		zap.Int("bytes", len(body)))
	return OutcomeRetrieved, nil
}

// destinationPath is <root>/<product>/<year-or-"unknown">/<sanitized filename>.
func (p *Pipeline) destinationPath(link ResolvedLink) string {
	yearDir := "unknown"
	if link.Year != nil {
		yearDir = strconv.Itoa(*link.Year)
	}
	return filepath.Join(p.cfg.OutputRoot, p.cfg.Product, yearDir, filenameForLink(link.Href))
}
