// Package coordinator owns the dashboard's live state and decides when a
// new observed location warrants a fresh weather fetch.
package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/geoloc"
	"weather-dashboard/internal/settings"
	"weather-dashboard/internal/weather"
)

const fetchTimeout = 10 * time.Second

// Fetcher is the one-shot weather call the staleness policy gates.
type Fetcher interface {
	FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Report, error)
}

// Geocoder resolves a coordinate to an address label. Optional.
type Geocoder interface {
	Lookup(ctx context.Context, c geo.Coordinate) (string, error)
}

// Coordinator reconciles geolocation readings, map gestures, and toggle
// flips into a single state, persisting settings as they change. All state
// mutation happens on the Run loop's goroutine; readers get snapshots.
type Coordinator struct {
	mu    sync.RWMutex
	state State

	store      *settings.Store
	fetcher    Fetcher
	locator    geoloc.Locator
	geocoder   Geocoder
	catalog    *basemap.Catalog
	locateOpts geoloc.Options

	events chan event
	done   chan struct{}
}

// New builds a Coordinator with its state initialized from persisted
// settings, falling back to documented defaults for absent keys. geocoder
// may be nil, in which case the address label stays empty.
func New(
	store *settings.Store,
	fetcher Fetcher,
	locator geoloc.Locator,
	geocoder Geocoder,
	catalog *basemap.Catalog,
	locateOpts geoloc.Options,
) *Coordinator {
	st := State{
		Location:           settings.Get(store, keyLastLocation, DefaultLocation),
		Zoom:               settings.Get(store, keyZoom, defaultZoom),
		ShowMap:            settings.Get(store, keyShowMap, true),
		GeolocationEnabled: settings.Get(store, keyGeolocationEnabled, true),
		Basemap:            settings.Get(store, keySelectedMapID, basemap.RandomSelection()),
	}
	st.TileURL = catalog.Resolve(st.Basemap)

	return &Coordinator{
		state:      st,
		store:      store,
		fetcher:    fetcher,
		locator:    locator,
		geocoder:   geocoder,
		catalog:    catalog,
		locateOpts: locateOpts,
		events:     make(chan event, 64),
		done:       make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. It must be called exactly
// once. If geolocation is enabled, an initial position request is issued
// immediately; its eventual reading is what makes the first weather fetch
// happen on a fresh session.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	if c.Snapshot().GeolocationEnabled {
		c.requestDeviceLocation(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Event-injection points for the presentation shell.

// DeviceLocationUpdated feeds an externally observed device position.
func (c *Coordinator) DeviceLocationUpdated(coord geo.Coordinate) {
	c.post(deviceLocated{coord: coord})
}

// MapMoved reports that a pan/zoom gesture has settled on a new center.
func (c *Coordinator) MapMoved(center geo.Coordinate, zoom int) {
	c.post(mapMoved{center: center, zoom: zoom})
}

// SetToggle flips one of the persisted boolean settings.
func (c *Coordinator) SetToggle(name Toggle, value bool) {
	c.post(toggleChanged{name: name, value: value})
}

// SelectBasemap changes the selected tile source.
func (c *Coordinator) SelectBasemap(sel basemap.Selection) {
	c.post(basemapSelected{sel: sel})
}

// RefreshDeviceLocation requests a fresh geolocation reading if enabled.
func (c *Coordinator) RefreshDeviceLocation() {
	c.post(refreshLocation{})
}

func (c *Coordinator) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// handle runs one event to completion, including its synchronous state
// mutation and persistence writes, before the next event is taken.
func (c *Coordinator) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case deviceLocated:
		c.handleDeviceLocated(ctx, ev.coord)

	case deviceLocateFailed:
		log.Printf("geolocation failed: %v", ev.err)

	case mapMoved:
		c.handleMapMoved(ctx, ev.center, ev.zoom)

	case toggleChanged:
		c.handleToggle(ctx, ev.name, ev.value)

	case basemapSelected:
		c.handleBasemap(ev.sel)

	case refreshLocation:
		if c.Snapshot().GeolocationEnabled {
			c.requestDeviceLocation(ctx)
		}

	case weatherResult:
		c.handleWeatherResult(ev)

	case addressResult:
		c.handleAddressResult(ev)
	}
}

func (c *Coordinator) handleDeviceLocated(ctx context.Context, coord geo.Coordinate) {
	c.mu.Lock()
	if !c.state.GeolocationEnabled {
		// A reading that resolves after the toggle flipped off is stale.
		c.mu.Unlock()
		return
	}
	device := coord
	c.state.UserDeviceLocation = &device
	c.state.Location = coord
	c.mu.Unlock()

	c.persist(keyLastLocation, coord)
	c.maybeFetchWeather(ctx, coord)
	c.requestAddress(ctx, coord)
}

func (c *Coordinator) handleMapMoved(ctx context.Context, center geo.Coordinate, zoom int) {
	c.mu.Lock()
	if !c.state.ShowMap {
		c.mu.Unlock()
		return
	}
	// The device position tracks independently of the panned view.
	c.state.Location = center
	c.state.Zoom = zoom
	c.mu.Unlock()

	c.persist(keyLastLocation, center)
	c.persist(keyZoom, zoom)
	c.maybeFetchWeather(ctx, center)
	c.requestAddress(ctx, center)
}

func (c *Coordinator) handleToggle(ctx context.Context, name Toggle, value bool) {
	switch name {
	case ToggleShowMap:
		c.mu.Lock()
		c.state.ShowMap = value
		c.mu.Unlock()
		c.persist(keyShowMap, value)

	case ToggleGeolocation:
		c.mu.Lock()
		c.state.GeolocationEnabled = value
		c.state.UserDeviceLocation = nil
		c.mu.Unlock()
		c.persist(keyGeolocationEnabled, value)

		if value {
			c.requestDeviceLocation(ctx)
		}

	default:
		log.Printf("ignoring unknown toggle %q", name)
	}
}

func (c *Coordinator) handleBasemap(sel basemap.Selection) {
	tile := c.catalog.Resolve(sel)

	c.mu.Lock()
	c.state.Basemap = sel
	c.state.TileURL = tile
	c.mu.Unlock()

	c.persist(keySelectedMapID, sel)
}

// maybeFetchWeather applies the staleness policy: fetch when no fetch has
// ever completed, or when the new location is more than the threshold away
// from the last fetched one. The bookkeeping is updated before the async
// call is issued so a rapid follow-up event cannot trigger a second
// concurrent fetch for the same move.
func (c *Coordinator) maybeFetchWeather(ctx context.Context, loc geo.Coordinate) {
	c.mu.Lock()
	if c.state.HasMadeInitialWeatherFetch &&
		c.state.LastWeatherFetchLocation != nil &&
		geo.Distance(*c.state.LastWeatherFetchLocation, loc) <= minDistanceForUpdateKm {
		c.mu.Unlock()
		return
	}
	c.state.HasMadeInitialWeatherFetch = true
	requested := loc
	c.state.LastWeatherFetchLocation = &requested
	c.mu.Unlock()

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		report, err := c.fetcher.FetchCurrent(fetchCtx, loc)
		c.post(weatherResult{requested: loc, report: report, err: err})
	}()
}

func (c *Coordinator) handleWeatherResult(ev weatherResult) {
	if ev.err != nil {
		// Keep the last good reading; the next qualifying location change
		// is the retry path.
		log.Printf("weather fetch for (%.4f, %.4f) failed: %v", ev.requested.Lat, ev.requested.Lon, ev.err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if geo.Distance(c.state.Location, ev.requested) > minDistanceForUpdateKm {
		log.Printf("INFO: discarding stale weather result for (%.4f, %.4f); view has moved on",
			ev.requested.Lat, ev.requested.Lon)
		return
	}

	report := ev.report
	c.state.Weather = &report
}

func (c *Coordinator) handleAddressResult(ev addressResult) {
	if ev.err != nil {
		log.Printf("reverse geocode for (%.4f, %.4f) failed: %v", ev.requested.Lat, ev.requested.Lon, ev.err)
		return
	}

	c.mu.Lock()
	c.state.Address = ev.address
	c.mu.Unlock()
}

func (c *Coordinator) requestDeviceLocation(ctx context.Context) {
	go func() {
		coord, err := c.locator.Locate(ctx, c.locateOpts)
		if err != nil {
			c.post(deviceLocateFailed{err: err})
			return
		}
		c.post(deviceLocated{coord: coord})
	}()
}

func (c *Coordinator) requestAddress(ctx context.Context, loc geo.Coordinate) {
	if c.geocoder == nil {
		return
	}
	go func() {
		addr, err := c.geocoder.Lookup(ctx, loc)
		c.post(addressResult{requested: loc, address: addr, err: err})
	}()
}

// persist writes a settings key synchronously. Storage failures are logged
// and otherwise ignored; in-memory state stays authoritative for the
// session.
func (c *Coordinator) persist(key string, value any) {
	if err := c.store.Set(key, value); err != nil {
		log.Printf("persist %q failed: %v", key, err)
	}
}
