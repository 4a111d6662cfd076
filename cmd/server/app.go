package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"kotoba/internal/config"
	"kotoba/internal/content"
	"kotoba/internal/database"
	"kotoba/internal/platform/logger"
	"kotoba/internal/platform/sqlstore"
	"kotoba/internal/service"
	"kotoba/internal/store"
)

// application bundles the server's wired dependencies.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	content store.ContentStore
	manager *service.SessionManager
}

// newApplication loads configuration, opens and migrates the database,
// imports the bundled vocabulary, and wires the service layer.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := database.OpenAndMigrate(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	contentStore := sqlstore.NewContentStore(db, log)

	importer, err := content.NewImporter(db, contentStore, log)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("creating importer: %w", err)
	}
	imported, err := importer.ImportBundled(ctx)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("importing bundled content: %w", err)
	}
	if imported > 0 {
		log.Info("bundled content imported", slog.Int("sets", imported))
	}

	manager, err := service.NewSessionManager(
		db,
		sqlstore.NewSessionStore(db, log),
		sqlstore.NewOrderStore(db, log),
		log,
	)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("creating session manager: %w", err)
	}

	return &application{
		config:  cfg,
		logger:  log,
		db:      db,
		content: contentStore,
		manager: manager,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	closeQuietly(app.db, app.logger)
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", slog.String("error", err.Error()))
	}
}
