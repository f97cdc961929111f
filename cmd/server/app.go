package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocably/srs-api/internal/api"
	"github.com/vocably/srs-api/internal/api/middleware"
	"github.com/vocably/srs-api/internal/config"
	"github.com/vocably/srs-api/internal/domain/srs"
	"github.com/vocably/srs-api/internal/platform/clock"
	"github.com/vocably/srs-api/internal/platform/postgres"
	"github.com/vocably/srs-api/internal/platform/sqlite"
	"github.com/vocably/srs-api/internal/service"
	"github.com/vocably/srs-api/internal/service/auth"
	"github.com/vocably/srs-api/internal/service/review"
	"github.com/vocably/srs-api/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB

	authHandler    *api.AuthHandler
	cardHandler    *api.CardHandler
	sessionHandler *api.SessionHandler
	statsHandler   *api.StatsHandler
	authMiddleware *middleware.AuthMiddleware
}

// newApplication wires stores, services, and handlers from the loaded
// configuration and an open database handle.
func newApplication(cfg *config.Config, appLogger *slog.Logger, db *sql.DB) (*application, error) {
	var (
		cardStore store.CardStore
		userStore store.UserStore
		logStore  store.ReviewLogStore
	)
	switch cfg.Database.Driver {
	case "postgres":
		cardStore = postgres.NewPostgresCardStore(db, appLogger)
		userStore = postgres.NewPostgresUserStore(db, appLogger)
		logStore = postgres.NewPostgresReviewLogStore(db, appLogger)
	case "sqlite":
		cardStore = sqlite.NewCardStore(db, appLogger)
		userStore = sqlite.NewUserStore(db, appLogger)
		logStore = sqlite.NewReviewLogStore(db, appLogger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	bcrypt := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)

	srsService := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:          cfg.SRS.MinEaseFactor,
		MaxEaseFactor:          cfg.SRS.MaxEaseFactor,
		GraduationRepetitions:  cfg.SRS.GraduationRepetitions,
		GraduationIntervalDays: cfg.SRS.GraduationIntervalDays,
	}))

	userService := service.NewUserService(userStore, bcrypt, bcrypt, appLogger)
	cardService := service.NewCardService(cardStore, srsService, appLogger)
	statsService := service.NewStatsService(cardStore, logStore, appLogger)

	maxCards := cfg.Session.MaxCards
	if maxCards <= 0 {
		maxCards = config.DefaultSessionMaxCards
	}
	targetSeconds := cfg.Session.TargetDurationSeconds
	if targetSeconds <= 0 {
		targetSeconds = config.DefaultSessionTargetDurationSeconds
	}
	reviewService := review.NewReviewService(db, cardStore, logStore, srsService, review.Options{
		MaxCards:       maxCards,
		TargetDuration: time.Duration(targetSeconds) * time.Second,
	}, appLogger)

	clk := clock.NewSystem()

	return &application{
		cfg:            cfg,
		logger:         appLogger,
		db:             db,
		authHandler:    api.NewAuthHandler(userService, jwtService),
		cardHandler:    api.NewCardHandler(cardService, clk, appLogger),
		sessionHandler: api.NewSessionHandler(reviewService, clk, appLogger),
		statsHandler:   api.NewStatsHandler(statsService, clk, appLogger),
		authMiddleware: middleware.NewAuthMiddleware(jwtService),
	}, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	router := app.setupRouter()
	return startHTTPServer(ctx, app.cfg.Server.Port, router, app.logger)
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
