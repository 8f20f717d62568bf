// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package floorplan

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/assemblylights/internal/logging"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

var pngBytes = []byte("\x89PNG\r\n\x1a\nfloorplan")

type upstream struct {
	hits        atomic.Int32
	status      atomic.Int32
	contentType string
	body        []byte
}

func newUpstream(t *testing.T, mutate ...func(*upstream)) (*upstream, *httptest.Server) {
	t.Helper()
	u := &upstream{contentType: "image/png", body: pngBytes}
	u.status.Store(http.StatusOK)
	for _, m := range mutate {
		m(u)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		u.hits.Add(1)
		w.Header().Set("Content-Type", u.contentType)
		w.WriteHeader(int(u.status.Load()))
		_, _ = w.Write(u.body)
	}))
	t.Cleanup(srv.Close)
	return u, srv
}

func newFetcher(t *testing.T, url string, mutate func(*Config)) (*Fetcher, *time.Time) {
	t.Helper()
	cfg := Config{URL: url, CacheTTL: time.Minute, RequestsPerSecond: 1000, Burst: 100}
	if mutate != nil {
		mutate(&cfg)
	}
	f, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	now := time.Date(2016, 3, 1, 6, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }
	return f, &now
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("New() without URL should fail")
	}
}

func TestFetcher_CachesUntilTTL(t *testing.T) {
	u, srv := newUpstream(t)
	f, now := newFetcher(t, srv.URL, nil)
	ctx := context.Background()

	img, err := f.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(img.Data) != string(pngBytes) || img.ContentType != "image/png" {
		t.Errorf("image = %q (%s)", img.Data, img.ContentType)
	}

	if _, err := f.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if got := u.hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1 while fresh", got)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := f.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if got := u.hits.Load(); got != 2 {
		t.Errorf("upstream hits = %d, want 2 after expiry", got)
	}
}

func TestFetcher_ServesStaleOnFailure(t *testing.T) {
	u, srv := newUpstream(t)
	f, now := newFetcher(t, srv.URL, nil)
	ctx := context.Background()

	first, err := f.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}

	u.status.Store(http.StatusBadGateway)
	*now = now.Add(2 * time.Minute)
	img, err := f.Get(ctx)
	if err != nil {
		t.Fatalf("Get() with stale copy error = %v", err)
	}
	if img != first {
		t.Error("stale copy should be served while the upstream fails")
	}
}

func TestFetcher_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*upstream)
		cfg    func(*Config)
	}{
		{name: "bad status", mutate: func(u *upstream) { u.status.Store(http.StatusNotFound) }},
		{name: "not an image", mutate: func(u *upstream) { u.contentType = "text/html" }},
		{name: "too large", cfg: func(c *Config) { c.MaxBytes = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutate []func(*upstream)
			if tt.mutate != nil {
				mutate = append(mutate, tt.mutate)
			}
			_, srv := newUpstream(t, mutate...)
			f, _ := newFetcher(t, srv.URL, tt.cfg)
			_, err := f.Get(context.Background())
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("Get() error = %v, want ErrUnavailable", err)
			}
			if f.Cached() != nil {
				t.Error("failed fetch must not populate the cache")
			}
		})
	}
}

func TestFetcher_CircuitOpensAfterFailures(t *testing.T) {
	u, srv := newUpstream(t)
	u.status.Store(http.StatusInternalServerError)
	f, _ := newFetcher(t, srv.URL, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.Get(ctx); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
	}
	if _, err := f.Get(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get() with open circuit error = %v", err)
	}
	if got := u.hits.Load(); got != 3 {
		t.Errorf("upstream hits = %d, want 3 (open circuit skips the fetch)", got)
	}
}

func TestFetcher_RateLimited(t *testing.T) {
	u, srv := newUpstream(t)
	f, now := newFetcher(t, srv.URL, func(c *Config) {
		c.RequestsPerSecond = 0.001
		c.Burst = 1
	})
	ctx := context.Background()

	first, err := f.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(2 * time.Minute)
	img, err := f.Get(ctx)
	if err != nil || img != first {
		t.Fatalf("Get() = %v, %v; want stale copy", img, err)
	}
	if got := u.hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}
