package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fmt"

	"podads/internal/adapter/catalog/fixture"
	httpadapter "podads/internal/adapter/http"
	"podads/internal/adapter/postgres"
	"podads/internal/adapter/usecase"
	"podads/internal/config"
	"podads/internal/core/filter"
	"podads/internal/core/port"
	"podads/internal/db"
	"podads/internal/metrics"
)

// main is the entry point of the podads decision server. It loads
// configuration, selects the catalog source (embedded fixtures by default,
// Postgres when configured), wires the filter chain and decision pipeline,
// then starts the HTTP server. On receiving a termination signal it
// gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The brand-safety blocklist always comes from the embedded fixture; it
	// is curated data shipped with the binary, not catalog state.
	blocklist, err := fixture.LoadBlocklist()
	if err != nil {
		logger.Error("blocklist load error", slog.Any("error", err))
		os.Exit(1)
	}

	var catalog port.CatalogRepository
	switch cfg.Catalog.Source {
	case "postgres":
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				os.Exit(1)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if cfg.Catalog.Seed {
			if err = db.Seed(ctx, pool); err != nil {
				logger.Error("seed error", slog.Any("error", err))
				os.Exit(1)
			}
			logger.Info("fixture catalog seeded")
		}
		catalog = postgres.NewCatalogRepository(pool)
	default:
		repo, err := fixture.NewRepository()
		if err != nil {
			logger.Error("fixture catalog error", slog.Any("error", err))
			os.Exit(1)
		}
		catalog = repo
	}
	logger.Info("catalog source selected", slog.String("source", cfg.Catalog.Source))

	chain := filter.DefaultChain(blocklist)
	svc := usecase.NewDecisionUseCase(catalog, chain, logger, metrics.New())

	handler := httpadapter.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
