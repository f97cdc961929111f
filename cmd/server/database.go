package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vocably/srs-api/internal/config"
	"github.com/vocably/srs-api/internal/platform/postgres"
	"github.com/vocably/srs-api/internal/platform/sqlite"
	"github.com/vocably/srs-api/internal/redact"
)

// setupAppDatabase opens the configured database and applies migrations.
func setupAppDatabase(cfg *config.Config, appLogger *slog.Logger) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return setupPostgres(cfg, appLogger)
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		appLogger.Info("Connected to sqlite database", "url", redact.String(cfg.Database.URL))
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

func setupPostgres(cfg *config.Config, appLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("Connected to postgres database", "url", redact.String(cfg.Database.URL))

	if err := postgres.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	appLogger.Info("Database migrations applied")

	return db, nil
}
