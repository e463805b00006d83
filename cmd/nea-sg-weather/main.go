package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/nea-sg-weather/internal/api/http"
	"github.com/i474232898/nea-sg-weather/internal/config"
	"github.com/i474232898/nea-sg-weather/internal/metrics"
	"github.com/i474232898/nea-sg-weather/internal/scheduler"
	"github.com/i474232898/nea-sg-weather/internal/store"
	"github.com/i474232898/nea-sg-weather/internal/weather"
	"github.com/i474232898/nea-sg-weather/internal/weather/nea"
)

func main() {
	// Load configuration (also loads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Shared HTTP client for outbound NEA calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	fetcher := nea.NewFetcher(httpClient, zlog,
		nea.WithEndpoints(cfg.Endpoints),
		nea.WithHeaders(cfg.Headers),
		nea.WithMetrics(collector),
	)

	snapshots, health, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// Core service orchestrating NEA processors and the store.
	service := weather.NewService(snapshots, newRefreshers(fetcher, cfg.Metrics), zlog)

	sched := scheduler.New(service, cfg.Metrics, scheduler.Options{
		Interval: cfg.FetchInterval,
		Timeout:  cfg.RefreshTimeout,
		Backoff: scheduler.BackoffConfig{
			MaxRetries:      cfg.RefreshMaxRetries,
			InitialInterval: cfg.RefreshBackoff,
			MaxInterval:     cfg.RefreshBackoff * 8,
		},
	}, collector, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "nea-sg-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RefreshTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if health != nil {
			if err := health(c.UserContext()); err != nil {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "nea-sg-weather",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, service)

	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

// openStore returns Postgres when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.AppConfig) (weather.Store, func(context.Context) error, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	pg := store.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return pg, pg.Health, pool.Close, nil
}

func newRefreshers(f *nea.Fetcher, ms []weather.Metric) []weather.Refresher {
	var out []weather.Refresher
	for _, m := range ms {
		switch m {
		case weather.MetricForecast2hr:
			out = append(out, nea.NewForecast2hr(f))
		case weather.MetricForecast24hr:
			out = append(out, nea.NewForecast24hr(f))
		case weather.MetricForecast4day:
			out = append(out, nea.NewForecast4day(f))
		case weather.MetricTemperature:
			out = append(out, nea.NewTemperature(f))
		case weather.MetricHumidity:
			out = append(out, nea.NewHumidity(f))
		case weather.MetricWindDirection:
			out = append(out, nea.NewWindDirection(f))
		case weather.MetricWindSpeed:
			out = append(out, nea.NewWindSpeed(f))
		case weather.MetricWind:
			out = append(out, nea.NewWind(f))
		case weather.MetricRainfall:
			out = append(out, nea.NewRain(f))
		case weather.MetricPM25:
			out = append(out, nea.NewPM25(f))
		case weather.MetricUVIndex:
			out = append(out, nea.NewUVIndex(f))
		}
	}
	return out
}
