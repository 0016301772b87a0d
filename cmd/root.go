package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/config"
	"github.com/iliyamo/venue-ops/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "venue-ops",
	Short:        "Venue back-office API for floor plans, inventory and purchasing",
	Long:         `HTTP API for venue back-office staff. Commands: serve, migrate, consume, create-user.`,
	RunE:         runServe, // default: same as "venue-ops serve"
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(consumeCmd)
	rootCmd.AddCommand(createUserCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return cfg, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}
