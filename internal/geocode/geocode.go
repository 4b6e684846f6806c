// Package geocode resolves coordinates to human-readable addresses for the
// overlay label. Lookups are not part of the weather staleness policy.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelvins/geocoder"

	"weather-dashboard/internal/cache"
	"weather-dashboard/internal/common"
	"weather-dashboard/internal/geo"
)

// ErrNoAddress is returned when the upstream geocoder has no address for
// the coordinate (open water, poles).
var ErrNoAddress = errors.New("no address found for coordinate")

// Resolver turns a coordinate into an address string.
type Resolver interface {
	Lookup(ctx context.Context, c geo.Coordinate) (string, error)
}

// GoogleResolver reverse-geocodes through the Google Geocoding API. Results
// are cached on a ~1 km grid; the address label does not need more precision
// than the weather overlay it sits under.
type GoogleResolver struct {
	cache *cache.Cache[string]
}

func NewGoogleResolver(apiKey string, cacheTTL time.Duration) *GoogleResolver {
	geocoder.ApiKey = apiKey
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &GoogleResolver{cache: cache.New[string](cacheTTL)}
}

func (r *GoogleResolver) Lookup(ctx context.Context, c geo.Coordinate) (string, error) {
	key := common.GridKey(c.Lat, c.Lon)
	if addr, ok := r.cache.Get(key); ok {
		return addr, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  c.Lat,
		Longitude: c.Lon,
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode (%.4f, %.4f): %w", c.Lat, c.Lon, err)
	}
	if len(addresses) == 0 {
		return "", ErrNoAddress
	}

	addr := addresses[0].FormattedAddress
	if addr == "" {
		addr = addresses[0].FormatAddress()
	}

	r.cache.Set(key, addr)
	return addr, nil
}
