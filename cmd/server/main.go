package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"
	"github.com/joho/godotenv"

	"adreport/internal/analysis"
	"adreport/internal/catalog"
	"adreport/internal/config"
	"adreport/internal/db"
	"adreport/internal/jobs"
	"adreport/internal/logging"
	"adreport/internal/metrics"
	"adreport/internal/server"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.IsDev())

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	cat := catalog.New(catalog.FromRules(rules))

	// Database is optional; without it the catalog comes from the rules file only
	var database *db.DB
	if cfg.HasDatabase() {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations completed")

		if err := database.SeedProducts(ctx, catalog.FromRules(rules)); err != nil {
			return err
		}

		refresher := jobs.NewCatalogRefresher(database, cat, cfg.CatalogRefresh, logger)
		go refresher.Start(ctx)

		metrics.Init(database)
	} else {
		logger.Info("no DATABASE_URL set, catalog is read-only and upload history is not stored")
		metrics.Init(nil)
	}

	svc, err := analysis.New(rules, cat, logger)
	if err != nil {
		return err
	}

	var storage fiber.Storage
	if cfg.RedisURL != "" {
		storage = redis.New(redis.Config{URL: cfg.RedisURL})
		defer storage.Close()
		logger.Info("sessions stored in redis")
	}

	srv := server.New(cfg, storage)
	if err := srv.RegisterRoutes(ctx, svc, database); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	cancel()
	if err := srv.Shutdown(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
