package weather

// Report is the current-conditions view the dashboard overlays on the map.
type Report struct {
	// Temperature in whole degrees. Nil when the provider omitted it,
	// which is distinct from a reading of zero.
	Temperature *int   `json:"temperature"`
	Summary     string `json:"summary"`
	Provider    string `json:"provider,omitempty"`
}
