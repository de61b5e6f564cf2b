package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/comptoir-backend/api"
	"github.com/angelmondragon/comptoir-backend/internal/app"
	"github.com/angelmondragon/comptoir-backend/internal/cron"
	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/metrics"
	"github.com/angelmondragon/comptoir-backend/pkg/storage/s3"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()
	os.Exit(run(*once))
}

// run returns the process exit code so deferred cleanup always happens.
func run(once bool) int {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return 1
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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
	services, err := app.NewServices(app.Params{Config: cfg, Store: infra.Store, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		return 1
	}

	lock, err := newLock(infra, cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		return 1
	}

	jobs, err := buildJobs(context.Background(), cfg, logg, services)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		return 1
	}
	jobRegistry, err := cron.NewRegistry(jobs...)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		return 1
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobRegistry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        jobRegistry.Names(),
	})

	if once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			return 1
		}
		return 0
	}

	metricsServer := api.NewServer(":"+cfg.App.Port, metricsHandler(registry))
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		_ = metricsServer.Shutdown(context.Background())
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		return 1
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return 0
}

// newLock serializes cycles across workers through Redis when it is
// configured, otherwise within this process.
func newLock(infra *app.Infra, cfg *config.Config) (cron.Lock, error) {
	if infra.Redis == nil {
		return cron.NewLocalLock(), nil
	}
	return cron.NewRedisLock(infra.Redis, infra.Redis.LockKey(lockName), cfg.Cron.LockTTL)
}

func buildJobs(ctx context.Context, cfg *config.Config, logg *logger.Logger, services *app.Services) ([]cron.Job, error) {
	snapshot, err := cron.NewSnapshotJob(services.Settings)
	if err != nil {
		return nil, err
	}
	jobs := []cron.Job{snapshot}

	if !cfg.Archive.Enabled() {
		logg.Info(ctx, "report archive disabled")
		return jobs, nil
	}
	uploader, err := s3.NewClient(ctx, cfg.Archive, logg)
	if err != nil {
		return nil, err
	}
	archive, err := cron.NewReportArchiveJob(services.Reports, uploader)
	if err != nil {
		return nil, err
	}
	return append(jobs, archive), nil
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}
