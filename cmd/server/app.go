package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/leancoffee-api/internal/config"
	"github.com/phrazzld/leancoffee-api/internal/platform/memory"
	"github.com/phrazzld/leancoffee-api/internal/platform/objectstore"
	"github.com/phrazzld/leancoffee-api/internal/platform/postgres"
	"github.com/phrazzld/leancoffee-api/internal/service"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// application holds all application-wide dependencies and configuration.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	db           *sql.DB // nil unless the postgres driver is selected
	boardStore   store.BoardStore
	boardService service.BoardService
}

// newApplication wires the configured board store into the board service.
// The caller must call cleanup when the application is no longer needed.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	boardStore, err := app.newBoardStore(ctx)
	if err != nil {
		return nil, err
	}
	app.boardStore = boardStore

	boardService, err := service.NewBoardService(boardStore, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}
	app.boardService = boardService

	logger.Info("Application initialized", "store_driver", cfg.Store.Driver)
	return app, nil
}

func (app *application) newBoardStore(ctx context.Context) (store.BoardStore, error) {
	cfg := app.config

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.NewBoardStore(app.logger), nil

	case config.DriverPostgres:
		db, err := setupAppDatabase(ctx, cfg, app.logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		app.db = db
		return postgres.NewPostgresBoardStore(db, app.logger), nil

	case config.DriverS3:
		client, err := objectstore.NewS3Client(ctx, objectstore.ClientConfig{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return objectstore.NewBoardStore(client, objectstore.Options{
			Bucket:     cfg.S3.Bucket,
			Prefix:     cfg.S3.Prefix,
			MaxRetries: cfg.S3.MaxRetries,
		}, app.logger), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
		return
	}
	app.db = nil
}
