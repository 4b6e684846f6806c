package providers

import (
	"testing"

	"weather-dashboard/internal/geo"
)

func testCoordinate() geo.Coordinate {
	return geo.Coordinate{Lat: 60.17, Lon: 24.94}
}

func TestNormalizeConditionText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Sunny", "Clear"},
		{"Partly cloudy", "Cloudy"},
		{"Light drizzle", "Rain"},
		{"Patchy light snow", "Snow"},
		{"Thundery outbreaks possible", "Thunderstorm"},
		{"Freezing fog", "Fog"},
		{"Sandstorm nearby", "Thunderstorm"},
	}

	for _, tc := range cases {
		if got := normalizeConditionText(tc.in); got != tc.want {
			t.Errorf("normalizeConditionText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
