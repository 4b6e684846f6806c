package weather

import (
	"context"

	"weather-dashboard/internal/geo"
)

// Provider abstracts a current-conditions source (e.g. Open-Meteo,
// OpenWeatherMap, WeatherAPI).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, c geo.Coordinate) (Report, error)
}
