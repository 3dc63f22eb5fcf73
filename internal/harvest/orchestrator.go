package harvest

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nattapongw/dede-harvester/internal/classify"
)

// reportFileExts marks hrefs that point directly at a downloadable report
// rather than a nested article page.
var reportFileExts = map[string]struct{}{
	".xls":  {},
	".xlsx": {},
	".csv":  {},
	".pdf":  {},
	".zip":  {},
	".rar":  {},
}

// OrchestratorConfig carries the crawl-level knobs.
type OrchestratorConfig struct {
	// HubURL is the top-level listing page.
	HubURL string
	// Selector scopes link extraction; the renderer falls back to the
	// whole document when it matches nothing.
	Selector string
	// Product names the harvest target, used in the catalog filename.
	Product string
	// Delay is the fixed politeness pause between successive requests.
	// It bounds request rate only; it is not a scheduling guarantee.
	Delay time.Duration
	// PreferVariant selects among multiple annual files on one article
	// page, e.g. "physical" over "value". Empty keeps the first annual.
	PreferVariant string
	// OutputRoot is where the run catalog lands.
	OutputRoot string
}

// Orchestrator walks the two-level link graph: the hub page links to
// per-year article pages and/or directly to report files; article pages
// link to the actual files. Classification is re-applied at each level
// because a file link may carry a different year than its parent article.
type Orchestrator struct {
	cfg        OrchestratorConfig
	renderer   Renderer
	retriever  Retriever
	resolver   classify.Resolver
	classifier classify.Classifier
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewOrchestrator builds a crawl orchestrator.
func NewOrchestrator(
	cfg OrchestratorConfig,
	renderer Renderer,
	retriever Retriever,
	resolver classify.Resolver,
	classifier classify.Classifier,
	logger *zap.Logger,
) *Orchestrator {
	var limiter *rate.Limiter
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	return &Orchestrator{
		cfg:        cfg,
		renderer:   renderer,
		retriever:  retriever,
		resolver:   resolver,
		classifier: classifier,
		limiter:    limiter,
		logger:     logger,
	}
}

// Run executes one full crawl. Failing to render the hub page is fatal;
// every per-link failure is logged and the run continues, so a partial
// outage on the portal costs only the affected links. Reruns are cheap
// because retrieval is idempotent.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID), zap.String("product", o.cfg.Product))

	records, err := o.renderer.Links(ctx, o.cfg.HubURL, o.cfg.Selector)
	if err != nil {
		return fmt.Errorf("render hub %s: %w", o.cfg.HubURL, err)
	}
	direct, nested := partitionLinks(records)
	log.Info("Hub scanned",
		zap.Int("direct_links", len(direct)), zap.Int("article_links", len(nested)))

	var rows []CatalogRow

	for _, rec := range direct {
		link := ResolveLink(rec, o.resolver, o.classifier)
		if link.Period != classify.PeriodAnnual {
			rows = append(rows, catalogRow(link, "excluded-"+string(link.Period)))
			continue
		}
		row, err := o.retrieve(ctx, log, link, o.cfg.HubURL)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	for _, rec := range nested {
		link := ResolveLink(rec, o.resolver, o.classifier)
		if link.Period != classify.PeriodAnnual {
			rows = append(rows, catalogRow(link, "excluded-"+string(link.Period)))
			continue
		}
		articleRows, err := o.harvestArticle(ctx, log, link)
		if err != nil {
			return err
		}
		rows = append(rows, articleRows...)
	}

	catalogPath := filepath.Join(o.cfg.OutputRoot,
		fmt.Sprintf("catalog_%s_%s.csv", o.cfg.Product, runID))
	if err := WriteCatalog(catalogPath, rows); err != nil {
		log.Warn("Failed to write run catalog", zap.Error(err))
	} else {
		log.Info("Run catalog written", zap.String("path", catalogPath), zap.Int("links", len(rows)))
	}
	return nil
}

// harvestArticle renders one annual article page and retrieves the single
// file link selected by the variant preference.
func (o *Orchestrator) harvestArticle(ctx context.Context, log *zap.Logger, article ResolvedLink) ([]CatalogRow, error) {
	if err := o.pause(ctx); err != nil {
		return nil, err
	}
	records, err := o.renderer.Links(ctx, article.Href, o.cfg.Selector)
	if err != nil {
		log.Warn("Article page render failed; continuing",
			zap.String("href", article.Href), zap.Error(err))
		return []CatalogRow{catalogRow(article, "error-render")}, nil
	}

	var annual []ResolvedLink
	for _, rec := range records {
		if !IsReportFile(rec.Href) {
			continue
		}
		link := ResolveLink(rec, o.resolver, o.classifier)
		if link.Period == classify.PeriodAnnual {
			annual = append(annual, link)
		}
	}
	if len(annual) == 0 {
		log.Info("Article page has no annual file link", zap.String("href", article.Href))
		return []CatalogRow{catalogRow(article, "no-annual-file")}, nil
	}

	selected := selectVariant(annual, o.cfg.PreferVariant)
	row, err := o.retrieve(ctx, log, selected, article.Href)
	if err != nil {
		return nil, err
	}
	return []CatalogRow{row}, nil
}

// retrieve runs the pipeline for one link behind the politeness throttle
// and the per-link error boundary. Only context cancellation escapes.
func (o *Orchestrator) retrieve(ctx context.Context, log *zap.Logger, link ResolvedLink, referrer string) (CatalogRow, error) {
	if err := o.pause(ctx); err != nil {
		return CatalogRow{}, err
	}
	outcome, err := o.retriever.RetrieveIfNeeded(ctx, link, referrer)
	if err != nil {
		if ctx.Err() != nil {
			return CatalogRow{}, ctx.Err()
		}
		log.Warn("Retrieval failed; continuing with remaining links",
			zap.String("href", link.Href), zap.Error(err))
		return catalogRow(link, "error"), nil
	}
	return catalogRow(link, string(outcome)), nil
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	return nil
}

// IsReportFile reports whether href points directly at a downloadable
// report file rather than another page.
func IsReportFile(href string) bool {
	name := classify.FilenameFromHref(href)
	_, ok := reportFileExts[strings.ToLower(path.Ext(name))]
	return ok
}

func partitionLinks(records []LinkRecord) (direct, nested []LinkRecord) {
	for _, rec := range records {
		if IsReportFile(rec.Href) {
			direct = append(direct, rec)
		} else {
			nested = append(nested, rec)
		}
	}
	return direct, nested
}

// selectVariant returns the first link whose text or filename mentions
// the preferred variant, falling back to the first annual link so a year
// is never silently skipped when the preference matches nothing.
func selectVariant(links []ResolvedLink, variant string) ResolvedLink {
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		return links[0]
	}
	for _, link := range links {
		haystack := strings.ToLower(link.Text + " " + classify.FilenameFromHref(link.Href))
		if strings.Contains(haystack, variant) {
			return link
		}
	}
	return links[0]
}

func catalogRow(link ResolvedLink, outcome string) CatalogRow {
	return CatalogRow{
		Href:    link.Href,
		Title:   link.Text,
		Year:    link.Year,
		Period:  link.Period,
		Outcome: outcome,
	}
}
