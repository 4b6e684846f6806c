package geoloc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestIPLocatorParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","lat":60.1699,"lon":24.9384}`))
	}))
	defer srv.Close()

	l := NewIPLocator(srv.Client(), srv.URL)
	coord, err := l.Locate(context.Background(), Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if coord.Lat != 60.1699 || coord.Lon != 24.9384 {
		t.Errorf("coord = %+v, want (60.1699, 24.9384)", coord)
	}
}

func TestIPLocatorReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	l := NewIPLocator(srv.Client(), srv.URL)
	if _, err := l.Locate(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for failed lookup")
	}
}

func TestIPLocatorServesCachedPositionWithinMaxAge(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"status":"success","lat":1,"lon":2}`))
	}))
	defer srv.Close()

	l := NewIPLocator(srv.Client(), srv.URL)
	opts := Options{MaxCachedAge: time.Minute}

	if _, err := l.Locate(context.Background(), opts); err != nil {
		t.Fatalf("first locate: %v", err)
	}
	if _, err := l.Locate(context.Background(), opts); err != nil {
		t.Fatalf("second locate: %v", err)
	}

	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Errorf("upstream called %d times, want 1 (second call should hit cache)", n)
	}
}
