package common

import (
	"fmt"
	"strings"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// GridKey buckets a latitude/longitude pair onto a 0.01 degree grid, which
// is roughly a kilometer. Used as a cache key so nearby lookups share one
// upstream call.
func GridKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
