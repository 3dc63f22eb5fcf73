// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a harvest run. All values
// originate from Viper so the harvester can be configured via file, env
// vars, or CLI flags.
type Config struct {
	// HubURL is the portal listing page the crawl starts from.
	HubURL string
	// Selector scopes link extraction on rendered pages; page markup is
	// configuration here, never a fixed contract.
	Selector string
	// OutputRoot is the directory reports, manifest, and catalogs land in.
	OutputRoot string
	// Product is the sub-folder and manifest key prefix for this source.
	Product string
	// Delay is the politeness pause between successive requests.
	Delay time.Duration
	// MinYear drops reports older than this Gregorian year.
	MinYear int
	// PreferVariant picks among multiple annual files on one article page.
	PreferVariant string
	// ForceRefresh re-downloads reports the manifest already records.
	ForceRefresh bool

	UserAgent     string
	ExtraHeaders  map[string]string
	FetchTimeout  time.Duration
	InsecureHosts []string

	Headless      bool
	RenderTimeout time.Duration
	SettleWait    time.Duration

	// Debug persists rendered HTML snapshots under DebugDir.
	Debug    bool
	DebugDir string

	// YearWindow and MonthWindow are the classification proximity
	// windows in characters. They were tuned against the DEDE portal
	// markup; point the harvester at another portal and these are the
	// first things to retune.
	YearWindow  int
	MonthWindow int

	LogDevelopment bool
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HubURL:         v.GetString("harvest.hub_url"),
		Selector:       v.GetString("harvest.selector"),
		OutputRoot:     v.GetString("harvest.output_root"),
		Product:        v.GetString("harvest.product"),
		Delay:          v.GetDuration("harvest.delay"),
		MinYear:        v.GetInt("harvest.min_year"),
		PreferVariant:  v.GetString("harvest.prefer_variant"),
		ForceRefresh:   v.GetBool("harvest.force_refresh"),
		UserAgent:      v.GetString("fetch.user_agent"),
		ExtraHeaders:   v.GetStringMapString("fetch.extra_headers"),
		FetchTimeout:   v.GetDuration("fetch.timeout"),
		InsecureHosts:  v.GetStringSlice("fetch.insecure_hosts"),
		Headless:       v.GetBool("render.headless"),
		RenderTimeout:  v.GetDuration("render.timeout"),
		SettleWait:     v.GetDuration("render.settle_wait"),
		Debug:          v.GetBool("debug.enabled"),
		DebugDir:       v.GetString("debug.dir"),
		YearWindow:     v.GetInt("classify.year_window"),
		MonthWindow:    v.GetInt("classify.month_window"),
		LogDevelopment: v.GetBool("logging.development"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.HubURL == "" {
		return fmt.Errorf("harvest.hub_url must be set")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("harvest.output_root must be set")
	}
	if c.Product == "" {
		return fmt.Errorf("harvest.product must be set")
	}
	if c.Delay < 0 {
		return fmt.Errorf("harvest.delay must be >= 0")
	}
	if c.MinYear < 0 {
		return fmt.Errorf("harvest.min_year must be >= 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render.timeout must be > 0")
	}
	if c.SettleWait < 0 {
		return fmt.Errorf("render.settle_wait must be >= 0")
	}
	if c.Debug && c.DebugDir == "" {
		return fmt.Errorf("debug.dir must be set when debug.enabled is true")
	}
	if c.YearWindow < 0 || c.MonthWindow < 0 {
		return fmt.Errorf("classify windows must be >= 0")
	}
	return nil
}
