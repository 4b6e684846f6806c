package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// SettingsPath is the SQLite file holding persisted user settings.
	SettingsPath string

	// MapboxToken is embedded into catalog tile URLs.
	MapboxToken string

	// Provider API keys. When none is set the keyless Open-Meteo source is
	// used.
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// GoogleGeocoderAPIKey enables the reverse-geocoded address label.
	GoogleGeocoderAPIKey string

	// Outbound HTTP client timeout.
	HTTPTimeout time.Duration

	// Geolocation acquisition knobs, mirroring browser-style position
	// options.
	GeolocationTimeout      time.Duration
	GeolocationMaxCachedAge time.Duration
	GeolocationRefresh      time.Duration

	GeocodeCacheTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:                 getenvDefault("PORT", "8080"),
		SettingsPath:         getenvDefault("SETTINGS_PATH", "data/settings.db"),
		MapboxToken:          os.Getenv("MAPBOX_ACCESS_TOKEN"),
		OpenWeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:        os.Getenv("WEATHERAPI_API_KEY"),
		GoogleGeocoderAPIKey: os.Getenv("GOOGLE_GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.GeolocationTimeout, err = getenvDuration("GEOLOCATION_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.GeolocationMaxCachedAge, err = getenvDuration("GEOLOCATION_MAX_CACHED_AGE", "10m"); err != nil {
		return nil, err
	}
	if cfg.GeolocationRefresh, err = getenvDuration("GEOLOCATION_REFRESH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
