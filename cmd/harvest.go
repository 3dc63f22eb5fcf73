package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/classify"
	"github.com/nattapongw/dede-harvester/internal/clock/system"
	"github.com/nattapongw/dede-harvester/internal/config"
	"github.com/nattapongw/dede-harvester/internal/fetch"
	"github.com/nattapongw/dede-harvester/internal/harvest"
	"github.com/nattapongw/dede-harvester/internal/logging"
	"github.com/nattapongw/dede-harvester/internal/manifest"
	"github.com/nattapongw/dede-harvester/internal/render"
)

// manifestFilename is fixed relative to the output root; the manifest
// travels with the files it describes.
const manifestFilename = "manifest.json"

// newHarvestCmd creates and configures the 'harvest' subcommand, which
// runs one full crawl of the configured hub page.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Runs one harvest of the configured hub page",
		Long: `Renders the hub page, classifies every discovered link, and downloads
each annual report the manifest does not already record. The run is a
batch: it completes once and exits, and rerunning it is always safe.`,

		RunE: runHarvestCommand,
	}
	return cmd
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	orch, closeFn, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn(cmd.Context())

	if err := orch.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run harvest: %w", err)
	}

	logging.L.Info("Harvest command finished.")
	return nil
}

func buildOrchestrator(cfg config.Config, logger *zap.Logger) (*harvest.Orchestrator, func(context.Context), error) {
	debugDir := ""
	if cfg.Debug {
		debugDir = cfg.DebugDir
	}
	renderer, err := render.New(render.Config{
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RenderTimeout,
		SettleWait: cfg.SettleWait,
		DebugDir:   debugDir,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}
	closeFn := func(ctx context.Context) {
		if cerr := renderer.Close(ctx); cerr != nil {
			logger.Warn("Failed to close renderer", zap.Error(cerr))
		}
	}

	fetcher, err := fetch.NewClient(fetch.Config{
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.FetchTimeout,
		ExtraHeaders:  cfg.ExtraHeaders,
		InsecureHosts: cfg.InsecureHosts,
	}, logger)
	if err != nil {
		closeFn(context.Background())
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	store := manifest.NewStore(filepath.Join(cfg.OutputRoot, manifestFilename), logger)
	pipeline := harvest.NewPipeline(harvest.PipelineConfig{
		OutputRoot:   cfg.OutputRoot,
		Product:      cfg.Product,
		MinYear:      cfg.MinYear,
		ForceRefresh: cfg.ForceRefresh,
	}, store, fetcher, system.New(), logger)

	orch := harvest.NewOrchestrator(harvest.OrchestratorConfig{
		HubURL:        cfg.HubURL,
		Selector:      cfg.Selector,
		Product:       cfg.Product,
		Delay:         cfg.Delay,
		PreferVariant: cfg.PreferVariant,
		OutputRoot:    cfg.OutputRoot,
	},
		renderer,
		pipeline,
		classify.Resolver{YearWindow: cfg.YearWindow},
		classify.Classifier{MonthWindow: cfg.MonthWindow},
		logger,
	)
	return orch, closeFn, nil
}
