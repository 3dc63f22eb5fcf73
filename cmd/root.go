// Package cmd defines and implements the CLI commands for the
// dede-harvester executable.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/logging"
	"github.com/nattapongw/dede-harvester/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dede-harvester",
		Short: "Harvests annual statistical reports from the DEDE portal.",
		Long: `dede-harvester renders the DEDE statistics hub page in headless Chrome,
classifies every link it finds as annual, half-year, or monthly using
Thai and English year heuristics, and downloads each annual report
exactly once. A manifest under the output root makes reruns idempotent.`,
	}

	cobra.OnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
		config.InitConfig()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newHarvestCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
