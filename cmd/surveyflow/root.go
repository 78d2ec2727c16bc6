package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "surveyflow",
	Short:         "Run paginated surveys over HTTP or in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig reads the config selected by --config and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
