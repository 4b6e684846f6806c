package coordinator

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/geoloc"
	"weather-dashboard/internal/settings"
	"weather-dashboard/internal/weather"
)

// stubFetcher records fetch requests, signals each start, and optionally
// blocks until released.
type stubFetcher struct {
	mu      sync.Mutex
	calls   []geo.Coordinate
	report  weather.Report
	err     error
	started chan geo.Coordinate
	release chan struct{}
}

func (f *stubFetcher) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Report, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- c
	}
	if f.release != nil {
		<-f.release
	}
	return f.report, f.err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// blockedFetcher never completes a fetch until the test ends; used when the
// test injects completion events itself.
func blockedFetcher(t *testing.T) *stubFetcher {
	t.Helper()
	f := &stubFetcher{release: make(chan struct{})}
	t.Cleanup(func() { close(f.release) })
	return f
}

func waitStarted(t *testing.T, f *stubFetcher) geo.Coordinate {
	t.Helper()
	select {
	case c := <-f.started:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no fetch was issued")
		return geo.Coordinate{}
	}
}

func expectNoStart(t *testing.T, f *stubFetcher) {
	t.Helper()
	select {
	case c := <-f.started:
		t.Fatalf("unexpected fetch issued for %v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

type stubLocator struct {
	coord geo.Coordinate
	err   error
	calls chan struct{}
}

func (l *stubLocator) Locate(ctx context.Context, opts geoloc.Options) (geo.Coordinate, error) {
	if l.calls != nil {
		l.calls <- struct{}{}
	}
	return l.coord, l.err
}

func testStore(t *testing.T, path string) *settings.Store {
	t.Helper()
	s, err := settings.Open(path)
	if err != nil {
		t.Fatalf("open settings store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCatalog() *basemap.Catalog {
	return basemap.NewWithMaps([]basemap.Map{
		{ID: 1, Name: "Test", TileURL: "https://tiles.test/{z}/{x}/{y}"},
	})
}

func newTestCoordinator(t *testing.T, fetcher Fetcher, locator geoloc.Locator) *Coordinator {
	t.Helper()
	store := testStore(t, filepath.Join(t.TempDir(), "settings.db"))
	return New(store, fetcher, locator, nil, testCatalog(), geoloc.Options{})
}

// drainOne pulls the next queued event and handles it, simulating the Run
// loop advancing one step.
func drainOne(t *testing.T, c *Coordinator) {
	t.Helper()
	select {
	case ev := <-c.events:
		c.handle(context.Background(), ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued event")
	}
}

func TestFirstLocationUpdateTriggersExactlyOneFetch(t *testing.T) {
	fetcher := &stubFetcher{
		started: make(chan geo.Coordinate, 4),
		release: make(chan struct{}),
	}
	temp := 18
	fetcher.report = weather.Report{Temperature: &temp, Summary: "Clear"}
	c := newTestCoordinator(t, fetcher, &stubLocator{})
	ctx := context.Background()

	here := geo.Coordinate{Lat: 60.17, Lon: 24.94}
	c.handle(ctx, deviceLocated{coord: here})

	// The guard flips before the fetch resolves.
	st := c.Snapshot()
	if !st.HasMadeInitialWeatherFetch {
		t.Error("HasMadeInitialWeatherFetch = false after first location update")
	}
	if st.LastWeatherFetchLocation == nil || *st.LastWeatherFetchLocation != here {
		t.Errorf("LastWeatherFetchLocation = %v, want %v", st.LastWeatherFetchLocation, here)
	}
	if st.Weather != nil {
		t.Error("Weather set before fetch resolved")
	}

	waitStarted(t, fetcher)

	// A nearby follow-up event while the fetch is in flight must not issue
	// a second one.
	c.handle(ctx, mapMoved{center: geo.Coordinate{Lat: 60.171, Lon: 24.941}, zoom: 13})
	expectNoStart(t, fetcher)
	if n := fetcher.callCount(); n != 1 {
		t.Errorf("fetch count = %d, want 1", n)
	}

	close(fetcher.release)
	drainOne(t, c) // apply the weather result

	st = c.Snapshot()
	if st.Weather == nil || st.Weather.Summary != "Clear" {
		t.Fatalf("Weather = %+v, want Clear", st.Weather)
	}
	if st.Weather.Temperature == nil || *st.Weather.Temperature != 18 {
		t.Errorf("Temperature = %v, want 18", st.Weather.Temperature)
	}
}

func TestStalenessThresholdIsStrict(t *testing.T) {
	fetcher := &stubFetcher{
		report:  weather.Report{Summary: "Clear"},
		started: make(chan geo.Coordinate, 4),
	}
	c := newTestCoordinator(t, fetcher, &stubLocator{})
	ctx := context.Background()

	origin := geo.Coordinate{Lat: 0, Lon: 0}
	c.handle(ctx, deviceLocated{coord: origin})
	waitStarted(t, fetcher)
	drainOne(t, c)

	// ~4.99 km from the origin: at or under the threshold, no fetch.
	near := geo.Coordinate{Lat: 0, Lon: 0.0449}
	if d := geo.Distance(origin, near); d > minDistanceForUpdateKm {
		t.Fatalf("test setup: near point is %.3f km away, want <= %v", d, minDistanceForUpdateKm)
	}
	c.handle(ctx, mapMoved{center: near, zoom: 13})
	expectNoStart(t, fetcher)

	// ~5.12 km: strictly over the threshold, fetch fires.
	far := geo.Coordinate{Lat: 0, Lon: 0.046}
	if d := geo.Distance(origin, far); d <= minDistanceForUpdateKm {
		t.Fatalf("test setup: far point is %.3f km away, want > %v", d, minDistanceForUpdateKm)
	}
	c.handle(ctx, mapMoved{center: far, zoom: 13})
	waitStarted(t, fetcher)

	if n := fetcher.callCount(); n != 2 {
		t.Errorf("total fetch count = %d, want 2", n)
	}
}

func TestStaleWeatherResultIsDiscarded(t *testing.T) {
	c := newTestCoordinator(t, blockedFetcher(t), &stubLocator{})
	ctx := context.Background()

	requestedAt := geo.Coordinate{Lat: 0, Lon: 0}
	c.handle(ctx, deviceLocated{coord: requestedAt})

	// The view moves far away before the first response arrives.
	elsewhere := geo.Coordinate{Lat: 1, Lon: 1}
	c.handle(ctx, mapMoved{center: elsewhere, zoom: 13})

	temp := 30
	c.handle(ctx, weatherResult{
		requested: requestedAt,
		report:    weather.Report{Temperature: &temp, Summary: "Hot somewhere else"},
	})
	if st := c.Snapshot(); st.Weather != nil {
		t.Errorf("stale result applied: %+v", st.Weather)
	}

	// The response for the current view is applied.
	c.handle(ctx, weatherResult{
		requested: elsewhere,
		report:    weather.Report{Summary: "Cloudy"},
	})
	if st := c.Snapshot(); st.Weather == nil || st.Weather.Summary != "Cloudy" {
		t.Errorf("current-view result not applied: %+v", c.Snapshot().Weather)
	}
}

func TestFetchFailureKeepsPriorWeather(t *testing.T) {
	c := newTestCoordinator(t, blockedFetcher(t), &stubLocator{})
	ctx := context.Background()

	here := geo.Coordinate{Lat: 10, Lon: 10}
	c.handle(ctx, deviceLocated{coord: here})
	c.handle(ctx, weatherResult{requested: here, report: weather.Report{Summary: "Clear"}})

	c.handle(ctx, weatherResult{requested: here, err: errors.New("provider down")})

	if st := c.Snapshot(); st.Weather == nil || st.Weather.Summary != "Clear" {
		t.Errorf("Weather = %+v, want prior Clear reading retained", c.Snapshot().Weather)
	}
}

func TestGeolocationToggleOnClearsAndRequestsOnce(t *testing.T) {
	locator := &stubLocator{err: errors.New("denied"), calls: make(chan struct{}, 2)}
	c := newTestCoordinator(t, blockedFetcher(t), locator)
	ctx := context.Background()

	device := geo.Coordinate{Lat: 5, Lon: 5}
	c.handle(ctx, deviceLocated{coord: device})
	if st := c.Snapshot(); st.UserDeviceLocation == nil {
		t.Fatal("device location not recorded")
	}

	// Off: cleared, no request issued.
	c.handle(ctx, toggleChanged{name: ToggleGeolocation, value: false})
	if st := c.Snapshot(); st.UserDeviceLocation != nil || st.GeolocationEnabled {
		t.Errorf("after toggle off: %+v", c.Snapshot())
	}
	select {
	case <-locator.calls:
		t.Fatal("toggle off issued a geolocation request")
	case <-time.After(50 * time.Millisecond):
	}

	// On: cleared immediately, exactly one request.
	c.handle(ctx, toggleChanged{name: ToggleGeolocation, value: true})
	if st := c.Snapshot(); st.UserDeviceLocation != nil {
		t.Error("UserDeviceLocation not cleared before the new request resolved")
	}
	select {
	case <-locator.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("toggle on issued no geolocation request")
	}
	select {
	case <-locator.calls:
		t.Fatal("toggle on issued more than one geolocation request")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeviceReadingIgnoredWhileDisabled(t *testing.T) {
	fetcher := blockedFetcher(t)
	c := newTestCoordinator(t, fetcher, &stubLocator{})
	ctx := context.Background()

	c.handle(ctx, toggleChanged{name: ToggleGeolocation, value: false})
	before := c.Snapshot().Location

	c.handle(ctx, deviceLocated{coord: geo.Coordinate{Lat: 33, Lon: 44}})

	st := c.Snapshot()
	if st.Location != before || st.UserDeviceLocation != nil {
		t.Errorf("late reading applied while disabled: %+v", st)
	}
	if n := fetcher.callCount(); n != 0 {
		t.Errorf("fetch issued for a reading that should be ignored: %d", n)
	}
}

func TestMapMovePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store := testStore(t, path)
	c := New(store, blockedFetcher(t), &stubLocator{}, nil, testCatalog(), geoloc.Options{})

	c.handle(context.Background(), mapMoved{center: geo.Coordinate{Lat: 10.0, Lon: 20.0}, zoom: 7})

	// Simulated restart: a fresh store and coordinator over the same file.
	reopened := testStore(t, path)
	c2 := New(reopened, blockedFetcher(t), &stubLocator{}, nil, testCatalog(), geoloc.Options{})

	st := c2.Snapshot()
	if st.Location != (geo.Coordinate{Lat: 10.0, Lon: 20.0}) {
		t.Errorf("restored Location = %v, want (10.0, 20.0)", st.Location)
	}
	if st.Zoom != 7 {
		t.Errorf("restored Zoom = %d, want 7", st.Zoom)
	}
}

func TestMapMoveIgnoredWhileMapHidden(t *testing.T) {
	c := newTestCoordinator(t, blockedFetcher(t), &stubLocator{})
	ctx := context.Background()

	c.handle(ctx, toggleChanged{name: ToggleShowMap, value: false})
	before := c.Snapshot().Location

	c.handle(ctx, mapMoved{center: geo.Coordinate{Lat: 50, Lon: 50}, zoom: 9})

	if st := c.Snapshot(); st.Location != before {
		t.Errorf("map move applied while hidden: %v", st.Location)
	}
}

func TestMapMoveLeavesDeviceLocationIndependent(t *testing.T) {
	c := newTestCoordinator(t, blockedFetcher(t), &stubLocator{})
	ctx := context.Background()

	device := geo.Coordinate{Lat: 5, Lon: 5}
	c.handle(ctx, deviceLocated{coord: device})

	panned := geo.Coordinate{Lat: 6, Lon: 6}
	c.handle(ctx, mapMoved{center: panned, zoom: 13})

	st := c.Snapshot()
	if st.Location != panned {
		t.Errorf("Location = %v, want panned center %v", st.Location, panned)
	}
	if st.UserDeviceLocation == nil || *st.UserDeviceLocation != device {
		t.Errorf("UserDeviceLocation = %v, want untouched %v", st.UserDeviceLocation, device)
	}
}

func TestBasemapSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store := testStore(t, path)
	c := New(store, blockedFetcher(t), &stubLocator{}, nil, testCatalog(), geoloc.Options{})
	ctx := context.Background()

	c.handle(ctx, basemapSelected{sel: basemap.NoneSelection()})
	if st := c.Snapshot(); st.TileURL != "" {
		t.Errorf("TileURL after selecting none = %q, want empty", st.TileURL)
	}

	// Unknown id falls back to a concrete catalog entry.
	c.handle(ctx, basemapSelected{sel: basemap.IDSelection(99)})
	if st := c.Snapshot(); st.TileURL == "" {
		t.Error("TileURL empty after unknown id, want random fallback")
	}

	// The selection itself persists.
	c.handle(ctx, basemapSelected{sel: basemap.NoneSelection()})
	reopened := testStore(t, path)
	c2 := New(reopened, blockedFetcher(t), &stubLocator{}, nil, testCatalog(), geoloc.Options{})
	if st := c2.Snapshot(); !st.Basemap.None {
		t.Errorf("restored selection = %v, want none", st.Basemap)
	}
}

func TestRunProcessesInjectedEvents(t *testing.T) {
	fetcher := &stubFetcher{report: weather.Report{Summary: "Clear"}}
	locator := &stubLocator{err: errors.New("no sensor")}
	c := newTestCoordinator(t, fetcher, locator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	target := geo.Coordinate{Lat: 10, Lon: 20}
	c.MapMoved(target, 7)

	deadline := time.After(2 * time.Second)
	for {
		if st := c.Snapshot(); st.Location == target && st.Zoom == 7 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("state never reflected injected map move: %+v", c.Snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
