package coordinator

import (
	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/weather"
)

// Events are processed one at a time, in arrival order, by the Run loop.
// Asynchronous completions (geolocation, weather, geocoding) re-enter the
// loop as events instead of mutating state from their own goroutines, so a
// late callback can never observe or clobber a newer state.
type event interface {
	isEvent()
}

// deviceLocated carries a successful geolocation reading.
type deviceLocated struct {
	coord geo.Coordinate
}

// deviceLocateFailed carries a geolocation failure; non-fatal.
type deviceLocateFailed struct {
	err error
}

// mapMoved is emitted when a pan/zoom gesture settles.
type mapMoved struct {
	center geo.Coordinate
	zoom   int
}

// toggleChanged flips one of the persisted boolean settings.
type toggleChanged struct {
	name  Toggle
	value bool
}

// basemapSelected changes the selected tile source.
type basemapSelected struct {
	sel basemap.Selection
}

// refreshLocation asks for a fresh geolocation reading if enabled. Posted by
// the periodic refresh job.
type refreshLocation struct{}

// weatherResult is the completion of an in-flight weather fetch. requested
// is the coordinate the fetch was issued for; completions may arrive out of
// request order.
type weatherResult struct {
	requested geo.Coordinate
	report    weather.Report
	err       error
}

// addressResult is the completion of a reverse-geocode lookup.
type addressResult struct {
	requested geo.Coordinate
	address   string
	err       error
}

func (deviceLocated) isEvent()      {}
func (deviceLocateFailed) isEvent() {}
func (mapMoved) isEvent()           {}
func (toggleChanged) isEvent()      {}
func (basemapSelected) isEvent()    {}
func (refreshLocation) isEvent()    {}
func (weatherResult) isEvent()      {}
func (addressResult) isEvent()      {}
