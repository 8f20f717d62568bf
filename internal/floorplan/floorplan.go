// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package floorplan fetches and caches the floor-plan background image.
//
// The image lives on a remote host. Fetcher keeps the last good copy for
// CacheTTL and guards the upstream with a client-side rate limiter and a
// circuit breaker, so a slow or unreachable host never stalls rendering:
// a stale copy is served while the upstream is failing.
package floorplan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
)

// ErrUnavailable is returned when no copy of the image can be served.
var ErrUnavailable = errors.New("floor-plan image unavailable")

const breakerName = "floorplan"

// Config controls fetching and caching.
type Config struct {
	URL               string
	CacheTTL          time.Duration
	Timeout           time.Duration
	MaxBytes          int64
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		CacheTTL:          time.Hour,
		Timeout:           10 * time.Second,
		MaxBytes:          20 << 20,
		RequestsPerSecond: 1,
		Burst:             2,
	}
}

// Image is a fetched copy of the floor plan.
type Image struct {
	Data        []byte
	ContentType string
	FetchedAt   time.Time
}

// Fetcher serves the floor-plan image from cache, refreshing it from the
// upstream URL when it expires.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*Image]
	now     func() time.Time

	// fetchMu serializes upstream fetches; mu guards cached.
	fetchMu sync.Mutex
	mu      sync.RWMutex
	cached  *Image
}

// New creates a Fetcher. A nil client gets one with cfg.Timeout.
func New(cfg Config, client *http.Client) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("floorplan: image URL is required")
	}
	d := DefaultConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = d.MaxBytes
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = d.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = d.Burst
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:      newBreaker(),
		now:     time.Now,
	}, nil
}

// newBreaker opens after 3 consecutive failures and probes again after 30s.
func newBreaker() *gobreaker.CircuitBreaker[*Image] {
	return gobreaker.NewCircuitBreaker[*Image](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// URL returns the upstream image URL.
func (f *Fetcher) URL() string {
	return f.cfg.URL
}

// Cached returns the current copy, or nil before the first successful fetch.
func (f *Fetcher) Cached() *Image {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cached
}

func (f *Fetcher) fresh(img *Image) bool {
	return img != nil && f.now().Sub(img.FetchedAt) < f.cfg.CacheTTL
}

// Get returns the floor-plan image. A fresh cached copy is returned as is.
// When the copy has expired the upstream is tried once; if that is refused
// or fails, the stale copy is returned. ErrUnavailable means there is no
// copy at all.
func (f *Fetcher) Get(ctx context.Context) (*Image, error) {
	if img := f.Cached(); f.fresh(img) {
		return img, nil
	}

	f.fetchMu.Lock()
	defer f.fetchMu.Unlock()

	// Another caller may have refreshed while we waited.
	stale := f.Cached()
	if f.fresh(stale) {
		return stale, nil
	}

	if !f.limiter.Allow() {
		metrics.FloorplanFetches.WithLabelValues("rejected").Inc()
		return f.fallback(stale, errors.New("upstream fetch rate limited"))
	}

	img, err := f.cb.Execute(func() (*Image, error) {
		return f.fetch(ctx)
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.FloorplanFetches.WithLabelValues(result).Inc()
		return f.fallback(stale, err)
	}

	metrics.FloorplanFetches.WithLabelValues("success").Inc()
	f.mu.Lock()
	f.cached = img
	f.mu.Unlock()
	logging.Debug().Int("bytes", len(img.Data)).Str("content_type", img.ContentType).Msg("Floor-plan image refreshed")
	return img, nil
}

func (f *Fetcher) fallback(stale *Image, cause error) (*Image, error) {
	if stale != nil {
		logging.Warn().Err(cause).Time("fetched_at", stale.FetchedAt).Msg("Serving stale floor-plan image")
		return stale, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, cause)
}

func (f *Fetcher) fetch(ctx context.Context) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", f.cfg.URL, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("fetch %s: unexpected content type %q", f.cfg.URL, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.cfg.URL, err)
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("fetch %s: image exceeds %d bytes", f.cfg.URL, f.cfg.MaxBytes)
	}

	return &Image{Data: data, ContentType: contentType, FetchedAt: f.now()}, nil
}
