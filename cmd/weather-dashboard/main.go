package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "weather-dashboard/internal/api/http"
	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/config"
	"weather-dashboard/internal/coordinator"
	"weather-dashboard/internal/geocode"
	"weather-dashboard/internal/geoloc"
	"weather-dashboard/internal/scheduler"
	"weather-dashboard/internal/settings"
	"weather-dashboard/internal/weather"
	"weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SettingsPath), 0o755); err != nil {
		log.Fatalf("failed to create settings directory: %v", err)
	}
	store, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("failed to open settings store: %v", err)
	}
	defer store.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	catalog := basemap.New(cfg.MapboxToken)
	svc := weather.NewService(pickProvider(httpClient, cfg))
	locator := geoloc.NewIPLocator(httpClient, "")

	var geocoder coordinator.Geocoder
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = geocode.NewGoogleResolver(cfg.GoogleGeocoderAPIKey, cfg.GeocodeCacheTTL)
	} else {
		log.Println("INFO: no geocoder API key configured; address label disabled")
	}

	coord := coordinator.New(store, svc, locator, geocoder, catalog, geoloc.Options{
		HighAccuracy: true,
		Timeout:      cfg.GeolocationTimeout,
		MaxCachedAge: cfg.GeolocationMaxCachedAge,
	})

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go coord.Run(runCtx)

	// Periodic device-location refresh keeps the dashboard following the
	// machine between map interactions.
	sched := scheduler.New(coord, cfg.GeolocationRefresh)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
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
			"service": "weather-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, coord, catalog)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// pickProvider selects the current-conditions source: a keyed provider when
// its key is configured, the keyless Open-Meteo otherwise.
func pickProvider(client *http.Client, cfg *config.AppConfig) weather.Provider {
	switch {
	case cfg.OpenWeatherAPIKey != "":
		return providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey)
	case cfg.WeatherAPIKey != "":
		return providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey)
	default:
		return providers.NewOpenMeteoProvider(client)
	}
}
