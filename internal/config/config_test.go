package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViperWithRequired(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.Set("harvest.hub_url", "https://www.dede.go.th/webmax/content/energy-statistics")
	v.Set("harvest.output_root", "data/reports")
	v.Set("harvest.product", "dede-energy")
	v.Set("fetch.user_agent", "dede-harvester/1.0")
	v.Set("fetch.timeout", "60s")
	v.Set("render.timeout", "45s")
	return v
}

func TestLoad(t *testing.T) {
	t.Parallel()

	v := newViperWithRequired(t)
	v.Set("harvest.delay", "2s")
	v.Set("harvest.min_year", 2010)
	v.Set("harvest.prefer_variant", "physical")
	v.Set("fetch.extra_headers", map[string]string{"Accept-Language": "th"})
	v.Set("fetch.insecure_hosts", []string{"www.dede.go.th"})
	v.Set("render.headless", true)
	v.Set("render.settle_wait", "1500ms")
	v.Set("classify.year_window", 40)
	v.Set("classify.month_window", 25)
	v.Set("logging.development", true)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://www.dede.go.th/webmax/content/energy-statistics", cfg.HubURL)
	assert.Equal(t, "data/reports", cfg.OutputRoot)
	assert.Equal(t, "dede-energy", cfg.Product)
	assert.Equal(t, 2*time.Second, cfg.Delay)
	assert.Equal(t, 2010, cfg.MinYear)
	assert.Equal(t, "physical", cfg.PreferVariant)
	assert.Equal(t, map[string]string{"Accept-Language": "th"}, cfg.ExtraHeaders)
	assert.Equal(t, []string{"www.dede.go.th"}, cfg.InsecureHosts)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 1500*time.Millisecond, cfg.SettleWait)
	assert.Equal(t, 40, cfg.YearWindow)
	assert.Equal(t, 25, cfg.MonthWindow)
	assert.True(t, cfg.LogDevelopment)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "missing hub url",
			mutate:  func(v *viper.Viper) { v.Set("harvest.hub_url", "") },
			wantErr: "hub_url",
		},
		{
			name:    "missing output root",
			mutate:  func(v *viper.Viper) { v.Set("harvest.output_root", "") },
			wantErr: "output_root",
		},
		{
			name:    "missing product",
			mutate:  func(v *viper.Viper) { v.Set("harvest.product", "") },
			wantErr: "product",
		},
		{
			name:    "negative delay",
			mutate:  func(v *viper.Viper) { v.Set("harvest.delay", "-1s") },
			wantErr: "delay",
		},
		{
			name:    "missing user agent",
			mutate:  func(v *viper.Viper) { v.Set("fetch.user_agent", "") },
			wantErr: "user_agent",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(v *viper.Viper) { v.Set("fetch.timeout", "0s") },
			wantErr: "fetch.timeout",
		},
		{
			name:    "zero render timeout",
			mutate:  func(v *viper.Viper) { v.Set("render.timeout", "0s") },
			wantErr: "render.timeout",
		},
		{
			name:    "debug without dir",
			mutate:  func(v *viper.Viper) { v.Set("debug.enabled", true) },
			wantErr: "debug.dir",
		},
		{
			name:    "negative classify window",
			mutate:  func(v *viper.Viper) { v.Set("classify.year_window", -1) },
			wantErr: "classify windows",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := newViperWithRequired(t)
			tc.mutate(v)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
