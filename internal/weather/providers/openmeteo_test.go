package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenMeteoFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current_weather") != "true" {
			t.Errorf("current_weather param missing from %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_weather":{"temperature":17.6,"weathercode":61}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL

	report, err := p.FetchCurrent(context.Background(), testCoordinate())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if report.Temperature == nil || *report.Temperature != 18 {
		t.Errorf("Temperature = %v, want rounded 18", report.Temperature)
	}
	if report.Summary != "Rain" {
		t.Errorf("Summary = %q, want Rain", report.Summary)
	}
}

func TestOpenMeteoOmittedTemperatureStaysNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_weather":{"weathercode":0}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL

	report, err := p.FetchCurrent(context.Background(), testCoordinate())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if report.Temperature != nil {
		t.Errorf("Temperature = %v, want nil for omitted field", *report.Temperature)
	}
	if report.Summary != "Clear" {
		t.Errorf("Summary = %q, want Clear", report.Summary)
	}
}

func TestOpenMeteoServerErrorSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL

	if _, err := p.FetchCurrent(context.Background(), testCoordinate()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
