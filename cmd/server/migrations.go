package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/leancoffee-api/internal/config"
	"github.com/phrazzld/leancoffee-api/internal/platform/postgres"
)

var errNoDatabase = errors.New("migrations need database.url to be set")

// handleMigrations runs a goose command against the configured database.
// It's called from run() when the -migrate flag is given.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.URL == "" {
		return errNoDatabase
	}

	logger.Info("Executing migrations", "command", command)

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	if err := postgres.RunMigrations(ctx, db, command); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("Migrations finished", "command", command)
	return nil
}
