// Package basemap holds the catalog of selectable background tile sources.
package basemap

import (
	"fmt"
	"math/rand"
)

// Map is a single catalog entry.
type Map struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Style   string `json:"style"`
	TileURL string `json:"tileUrl"`
}

// Catalog is a finite, stably ordered list of tile sources.
type Catalog struct {
	maps []Map
}

// New builds the default catalog. Tile URLs embed the access token so the
// presentation shell can use them directly as a Leaflet-style template.
func New(accessToken string) *Catalog {
	styles := []struct {
		id    int
		name  string
		style string
	}{
		{1, "Streets", "mapbox/streets-v8"},
		{2, "Light", "mapbox/light-v9"},
		{3, "Outdoors", "mapbox/outdoors-v9"},
		{4, "Satellite", "mapbox/satellite-streets-v9"},
		{5, "Dark", "mapbox/dark-v9"},
	}

	maps := make([]Map, 0, len(styles))
	for _, s := range styles {
		maps = append(maps, Map{
			ID:      s.id,
			Name:    s.name,
			Style:   s.style,
			TileURL: tileURL(s.style, accessToken),
		})
	}
	return &Catalog{maps: maps}
}

// NewWithMaps builds a catalog from explicit entries.
func NewWithMaps(maps []Map) *Catalog {
	return &Catalog{maps: maps}
}

func tileURL(style, accessToken string) string {
	return fmt.Sprintf(
		"https://api.mapbox.com/styles/v1/%s/tiles/256/{z}/{x}/{y}@2x?access_token=%s",
		style, accessToken,
	)
}

// All returns the catalog entries in stable order.
func (c *Catalog) All() []Map {
	out := make([]Map, len(c.maps))
	copy(out, c.maps)
	return out
}

// ByID looks up an entry by its catalog id.
func (c *Catalog) ByID(id int) (Map, bool) {
	for _, m := range c.maps {
		if m.ID == id {
			return m, true
		}
	}
	return Map{}, false
}

// Random returns a uniformly chosen entry. Each call re-rolls; a "random"
// selection is resolved to a fresh concrete entry every time it is applied.
func (c *Catalog) Random() Map {
	if len(c.maps) == 0 {
		return Map{}
	}
	return c.maps[rand.Intn(len(c.maps))]
}

// Resolve maps a selection to the concrete tile URL the shell should render.
// "none" resolves to an empty tile source; an id missing from the catalog
// falls back to a random entry rather than failing.
func (c *Catalog) Resolve(sel Selection) string {
	switch {
	case sel.None:
		return ""
	case sel.Random:
		return c.Random().TileURL
	default:
		if m, ok := c.ByID(sel.ID); ok {
			return m.TileURL
		}
		return c.Random().TileURL
	}
}
