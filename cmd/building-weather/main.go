package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/Harini-2202-S/building-weather/internal/api/http"
	"github.com/Harini-2202-S/building-weather/internal/buildings"
	"github.com/Harini-2202-S/building-weather/internal/config"
	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/metrics"
	"github.com/Harini-2202-S/building-weather/internal/panel"
	"github.com/Harini-2202-S/building-weather/internal/scheduler"
	"github.com/Harini-2202-S/building-weather/internal/store"
	"github.com/Harini-2202-S/building-weather/internal/weather"
	"github.com/Harini-2202-S/building-weather/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := setupLogger(cfg.Env)

	// Metrics registry with process and Go runtime collectors.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	provider := providers.NewOpenMeteoProvider(httpClient)
	weatherSvc := weather.NewService(provider, appMetrics, slogger)
	cachedSvc := weather.NewCachedService(weatherSvc, memStore, slogger)

	// Building registry: explicit coordinates first, then addresses resolved
	// through the geocoder when a key is configured.
	registry := buildings.NewRegistry(slogger)
	for _, b := range cfg.Buildings {
		registry.Add(b)
	}
	if len(cfg.BuildingAddresses) > 0 {
		resolver := geo.NewResolver(cfg.GeocoderAPIKey, slogger)
		registry.ResolveAddresses(resolver, cfg.BuildingAddresses)
	}

	// The panel fetches through the adapter directly; its own cache check
	// decides when a fetch is needed at all.
	panelFetcher := panel.FetchFunc(
		func(ctx context.Context, coord geo.Coordinate) (weather.Record, error) {
			return weatherSvc.Current(ctx, coord), nil
		})
	weatherPanel := panel.New(panelFetcher, memStore, appMetrics, cfg.DefaultCoordinate, slogger)

	// Background pre-fetch of the default coordinate; the panel stays closed.
	go weatherPanel.Warm(context.Background())

	// Keep the cache warm for the default coordinate and every building.
	refreshTargets := append([]geo.Coordinate{cfg.DefaultCoordinate}, registry.Coordinates()...)
	sched := scheduler.New(refreshTargets, cfg.RefreshInterval, cachedSvc, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "building-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "building-weather",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Panel:     weatherPanel,
		Weather:   cachedSvc,
		Store:     memStore,
		Buildings: registry,
	})

	go func() {
		slogger.Info("Server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("Fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	slogger.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("Error during shutdown", "error", err)
	}
}

// setupLogger initializes the logger based on the environment: a verbose text
// handler for local development, JSON elsewhere.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	case "development":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}
