package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/venue-ops/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := database.MigrateUp(cfg, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
