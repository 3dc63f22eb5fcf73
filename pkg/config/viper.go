// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a
// unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and
// enables reading from environment variables. Called once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/dede-harvester/")
	viper.AddConfigPath("$HOME/.dede-harvester")

	// Crawl surface.
	viper.SetDefault("harvest.hub_url", "https://www.dede.go.th/webmax/content/energy-statistics")
	viper.SetDefault("harvest.selector", ".content-detail")
	viper.SetDefault("harvest.output_root", "data/reports")
	viper.SetDefault("harvest.product", "dede-energy")
	viper.SetDefault("harvest.delay", "2s")
	viper.SetDefault("harvest.min_year", 2010)
	viper.SetDefault("harvest.prefer_variant", "")
	viper.SetDefault("harvest.force_refresh", false)

	// HTTP download surface.
	const defaultUA = "dede-harvester/1.0 (+https://github.com/nattapongw/dede-harvester)"
	viper.SetDefault("fetch.user_agent", defaultUA)
	viper.SetDefault("fetch.timeout", "60s")
	viper.SetDefault("fetch.extra_headers", map[string]string{})
	// The portal's own host serves an incomplete certificate chain, so
	// validation is relaxed for exactly this host.
	viper.SetDefault("fetch.insecure_hosts", []string{"www.dede.go.th"})

	// Headless rendering.
	viper.SetDefault("render.headless", true)
	viper.SetDefault("render.timeout", "45s")
	viper.SetDefault("render.settle_wait", "1500ms")

	// Debugging aids.
	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.dir", "data/debug")

	// Classification windows, tuned against the DEDE portal markup.
	viper.SetDefault("classify.year_window", 40)
	viper.SetDefault("classify.month_window", 25)

	viper.SetDefault("logging.development", true)

	viper.SetEnvPrefix("HARVESTER") // e.g. HARVESTER_HARVEST_MIN_YEAR=2015
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
