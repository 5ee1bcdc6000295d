package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/api"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/config"
	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/health"
	"github.com/isdelr/expense-tracker-be/internal/logger"
	"github.com/isdelr/expense-tracker-be/internal/monitoring"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Server exiting")
}

func run(cfg *config.Config) error {
	// Set up database
	db, err := database.New(cfg.DatabasePath, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdleTime: cfg.DBIdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(cfg.DatabasePath); err != nil {
		return fmt.Errorf("apply database migrations: %w", err)
	}
	log.Info().Str("path", cfg.DatabasePath).Msg("Database ready")

	// Set up services
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	userService := services.NewUserService(
		repository.NewUserRepository(db, cfg.DBAcquireTimeout),
		auth.NewPasswordHasher(cfg.BcryptCost),
		tokens,
	)
	expenseService := services.NewExpenseService(repository.NewExpenseRepository(db, cfg.DBAcquireTimeout))
	readiness := health.NewService(health.NewDatabaseChecker(db))

	// Set up router
	router := api.NewRouter(api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Environment:    cfg.Environment,
		ExposeStack:    !cfg.IsProduction(),
	}, userService, expenseService, tokens, readiness)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Set up and run the background maintenance scheduler
	if cfg.MaintenanceSchedule != "" {
		scheduler, err := monitoring.NewScheduler(cfg.MaintenanceSchedule, "database-maintenance", time.Minute,
			func(ctx context.Context) error { return database.Optimize(ctx, db) })
		if err != nil {
			return err
		}
		g.Go(func() error { return scheduler.Run(ctx) })
	}

	g.Go(func() error {
		log.Info().Int("port", cfg.ServerPort).Str("environment", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
