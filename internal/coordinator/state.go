package coordinator

import (
	"weather-dashboard/internal/basemap"
	"weather-dashboard/internal/geo"
	"weather-dashboard/internal/weather"
)

// Persisted setting keys. Each key is written synchronously inside the event
// handler that mutates its field.
const (
	keyLastLocation       = "lastLocation"
	keyZoom               = "zoom"
	keyShowMap            = "showMap"
	keyGeolocationEnabled = "geolocationEnabled"
	keySelectedMapID      = "selectedMapId"
)

const (
	defaultZoom = 13

	// minDistanceForUpdateKm is the staleness threshold: weather changes
	// slowly over a few kilometers, and the provider is usage-limited, so
	// pans and GPS jitter below this distance reuse the last fetch.
	minDistanceForUpdateKm = 5.0
)

// DefaultLocation is the map center used before any position has ever been
// observed or persisted.
var DefaultLocation = geo.Coordinate{Lat: 40.7128, Lon: -74.0060}

// Toggle names accepted by SetToggle.
type Toggle string

const (
	ToggleShowMap     Toggle = "showMap"
	ToggleGeolocation Toggle = "geolocationEnabled"
)

// State is the live view the presentation shell renders from. It is
// constructed once from settings at startup and mutated only by the
// coordinator's event handlers.
type State struct {
	// Location drives both the map center and the weather lookup. It can
	// diverge from the device position when the user pans the map.
	Location geo.Coordinate `json:"location"`

	// LastWeatherFetchLocation is the coordinate weather was last requested
	// for; nil before the first fetch.
	LastWeatherFetchLocation *geo.Coordinate `json:"lastWeatherFetchLocation"`

	Zoom               int               `json:"zoom"`
	ShowMap            bool              `json:"showMap"`
	GeolocationEnabled bool              `json:"geolocationEnabled"`
	Basemap            basemap.Selection `json:"selectedMapId"`

	// TileURL is the concrete tile source resolved from Basemap; empty when
	// the selection is "none".
	TileURL string `json:"tileUrl"`

	// UserDeviceLocation is the most recent raw geolocation reading. Map
	// pans leave it untouched; it is nil while geolocation is disabled or
	// unresolved.
	UserDeviceLocation *geo.Coordinate `json:"userDeviceLocation"`

	Weather *weather.Report `json:"weather"`
	Address string          `json:"address"`

	HasMadeInitialWeatherFetch bool `json:"hasMadeInitialWeatherFetch"`
}

func (s State) clone() State {
	out := s
	if s.LastWeatherFetchLocation != nil {
		c := *s.LastWeatherFetchLocation
		out.LastWeatherFetchLocation = &c
	}
	if s.UserDeviceLocation != nil {
		c := *s.UserDeviceLocation
		out.UserDeviceLocation = &c
	}
	if s.Weather != nil {
		w := *s.Weather
		out.Weather = &w
	}
	return out
}
