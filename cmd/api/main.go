package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/comptoir-backend/api"
	"github.com/angelmondragon/comptoir-backend/api/routes"
	"github.com/angelmondragon/comptoir-backend/internal/app"
	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return 1
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	infra, err := app.Open(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap store", err)
		return 1
	}
	defer func() {
		if err := infra.Close(); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := app.NewServices(app.Params{
		Config:     cfg,
		Store:      infra.Store,
		Logger:     logg,
		Registerer: registry,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		return 1
	}
	if err := services.SeedCatalog(context.Background(), cfg, logg); err != nil {
		logg.Error(context.Background(), "failed to seed catalog", err)
		return 1
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Pingers:     infra.Pingers(),
		Feed:        infra.Store.Feed(),
		Idempotency: infra.IdempotencyStore(),
		Gatherer:    registry,
		Access:      services.Access,
		Settings:    services.Settings,
		Catalog:     services.Catalog,
		Orders:      services.Orders,
		Ledger:      services.Ledger,
		Employees:   services.Employees,
		Activity:    services.Activity,
		Dashboard:   services.Dashboard,
		Reports:     services.Reports,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": cfg.Store.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, handler)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server shut down gracefully")
	}
	return 0
}
