package main

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-users/internal/config"
	"github.com/deppfellow/go-users/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres users table named by USERS_TABLE_NAME",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, log, loggerService, err := loadConfig()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires storage driver %q, got %q", config.DriverPostgres, cfg.Storage.Driver)
	}

	if err := database.Migrate(ctx, log, cfg); err != nil {
		log.Error().Err(err).Msg("migration failed")
		return err
	}

	return nil
}
