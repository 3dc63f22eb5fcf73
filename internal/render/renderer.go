// Package render drives headless Chrome to produce the anchor records the
// harvester classifies. The portal builds its report lists with
// JavaScript, so a plain GET sees none of the links a browser does.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/harvest"
)

// Config captures the renderer knobs.
type Config struct {
	// Headless toggles headless mode; disable to watch the browser when
	// debugging selector problems.
	Headless bool
	// UserAgent is sent on every navigation.
	UserAgent string
	// Timeout bounds one full page render.
	Timeout time.Duration
	// SettleWait is how long to wait after the body is ready before
	// snapshotting the DOM. chromedp has no network-idle primitive; a
	// short settle catches the late-loading link lists.
	SettleWait time.Duration
	// DebugDir, when set, persists every rendered HTML snapshot for
	// offline inspection.
	DebugDir string
}

// Renderer renders pages using headless Chrome via chromedp and extracts
// their anchors.
type Renderer struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	userAgent       string
	timeout         time.Duration
	settleWait      time.Duration
	debugDir        string
	logger          *zap.Logger
}

// New starts a shared browser process for the run.
func New(cfg Config, logger *zap.Logger) (*Renderer, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		allocatorCancel()
		browserCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Renderer{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		userAgent:       cfg.UserAgent,
		timeout:         cfg.Timeout,
		settleWait:      cfg.SettleWait,
		debugDir:        cfg.DebugDir,
		logger:          logger,
	}, nil
}

// Close tears down the chromedp allocator and browser contexts.
func (r *Renderer) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.browserCancel()
	r.allocatorCancel()
	select {
	case <-ctx.Done():
	default:
	}
	return nil
}

// Links renders pageURL and returns the anchors inside selector, falling
// back to the whole document when the selector matches nothing.
func (r *Renderer) Links(ctx context.Context, pageURL, selector string) ([]harvest.LinkRecord, error) {
	html, err := r.render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if r.debugDir != "" {
		r.saveSnapshot(pageURL, html)
	}
	records, err := ExtractLinks(html, pageURL, selector)
	if err != nil {
		return nil, fmt.Errorf("extract links from %s: %w", pageURL, err)
	}
	r.logger.Debug("Page rendered",
		zap.String("url", pageURL), zap.Int("links", len(records)), zap.Int("html_bytes", len(html)))
	return records, nil
}

func (r *Renderer) render(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settleWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run %s: %w", pageURL, err)
	}
	return html, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
