// Package fetch retrieves report file bytes over plain HTTP. Rendering is
// not needed here; once a link is classified the file itself is a static
// download.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// StatusError reports a non-success HTTP status for a report URL.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Config captures the fetcher knobs.
type Config struct {
	// UserAgent identifies the harvester to the portal.
	UserAgent string
	// Timeout bounds one download.
	Timeout time.Duration
	// ExtraHeaders are added to every request.
	ExtraHeaders map[string]string
	// InsecureHosts lists the exact hostnames where TLS certificate
	// validation is relaxed. The portal's download host serves an
	// incomplete chain; the relaxation is scoped to those hosts only,
	// never applied globally.
	InsecureHosts []string
}

// Client fetches report bytes via a Colly collector. Strict and relaxed
// collectors are built once and never reconfigured afterwards: Colly
// clones share their HTTP backend, so mutating a transport per request
// would leak the TLS relaxation to every later fetch.
type Client struct {
	strict       *colly.Collector
	relaxed      *colly.Collector
	extraHeaders map[string]string
	insecure     map[string]struct{}
	logger       *zap.Logger
}

// NewClient constructs a configured Colly-based fetcher.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	insecure := make(map[string]struct{}, len(cfg.InsecureHosts))
	for _, host := range cfg.InsecureHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			insecure[host] = struct{}{}
		}
	}

	return &Client{
		strict:       newCollector(cfg, false),
		relaxed:      newCollector(cfg, true),
		extraHeaders: cfg.ExtraHeaders,
		insecure:     insecure,
		logger:       logger,
	}, nil
}

// newCollector builds one collector. The relaxed variant differs from the
// strict one only in its TLS client config; both are downloaders, so the
// same href may legitimately be fetched more than once per run.
func newCollector(cfg Config, insecureTLS bool) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}
	if insecureTLS {
		// #nosec G402 -- relaxation is limited to explicitly configured hosts.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.WithTransport(transport)
	c.SetRequestTimeout(cfg.Timeout)
	return c
}

// Fetch downloads rawURL and returns its bytes. referrer, when set, is
// sent as the Referer header; the portal rejects bare requests for some
// report files. A non-2xx status returns a StatusError.
func (c *Client) Fetch(ctx context.Context, rawURL, referrer string) ([]byte, error) {
	base := c.strict
	if host, relaxed := c.relaxedHost(rawURL); relaxed {
		c.logger.Warn("TLS certificate validation relaxed for this host",
			zap.String("host", host), zap.String("url", rawURL))
		base = c.relaxed
	}
	collector := base.Clone()

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnRequest(func(r *colly.Request) {
		if referrer != "" {
			r.Headers.Set("Referer", referrer)
		}
		for k, v := range c.extraHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			send(fetchResult{err: &StatusError{URL: rawURL, StatusCode: r.StatusCode}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	// Visit surfaces the same failure OnError already reported, so the
	// handler's result (a typed StatusError for non-2xx) takes precedence.
	visitErr := collector.Visit(rawURL)
	collector.Wait()
	if visitErr != nil {
		select {
		case res := <-resultCh:
			if res.err != nil {
				return nil, res.err
			}
		default:
		}
		return nil, fmt.Errorf("visit %s: %w", rawURL, visitErr)
	}

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res.body, res.err
	default:
		return nil, fmt.Errorf("fetch %s produced no result", rawURL)
	}
}

func (c *Client) relaxedHost(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	_, ok := c.insecure[host]
	return host, ok
}

type fetchResult struct {
	body []byte
	err  error
}
