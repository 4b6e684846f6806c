// Package geoloc acquires the device's position. The dashboard treats the
// locator as an injected capability so the coordinator can be tested without
// a real sensor.
package geoloc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"weather-dashboard/internal/geo"
)

// Options mirror the browser geolocation request knobs: a hard timeout for
// acquisition and a tolerance for serving a cached position.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCachedAge time.Duration
}

// Locator resolves the device's current position.
type Locator interface {
	Locate(ctx context.Context, opts Options) (geo.Coordinate, error)
}

type reading struct {
	coord geo.Coordinate
	at    time.Time
}

// IPLocator approximates the device position from its public IP via an
// ip-api style JSON endpoint. Coarse, but headless machines have no GPS.
type IPLocator struct {
	client  *http.Client
	baseURL string

	mu   sync.Mutex
	last *reading
}

func NewIPLocator(client *http.Client, baseURL string) *IPLocator {
	if baseURL == "" {
		baseURL = "http://ip-api.com/json/"
	}
	return &IPLocator{client: client, baseURL: baseURL}
}

func (l *IPLocator) Locate(ctx context.Context, opts Options) (geo.Coordinate, error) {
	if opts.MaxCachedAge > 0 {
		l.mu.Lock()
		if l.last != nil && time.Since(l.last.at) <= opts.MaxCachedAge {
			coord := l.last.coord
			l.mu.Unlock()
			return coord, nil
		}
		l.mu.Unlock()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return geo.Coordinate{}, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("geolocation request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return geo.Coordinate{}, fmt.Errorf("geolocation response: %w", err)
	}
	if payload.Status != "success" {
		return geo.Coordinate{}, fmt.Errorf("geolocation lookup failed: %s", payload.Message)
	}

	coord := geo.Coordinate{Lat: payload.Lat, Lon: payload.Lon}

	l.mu.Lock()
	l.last = &reading{coord: coord, at: time.Now()}
	l.mu.Unlock()

	return coord, nil
}
