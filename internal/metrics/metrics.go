// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package metrics registers the Prometheus collectors for the service.
// Collectors are package-level and registered on the default registry via
// promauto; /metrics serves them through promhttp.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reference data
	SnapshotLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assemblylights_snapshot_load_duration_seconds",
			Help:    "Time taken to read and resample the reference tables",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assemblylights_table_rows",
			Help: "Rows in each loaded brightness table",
		},
		[]string{"table"}, // raw, points, hourly
	)

	TableChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assemblylights_table_channels",
			Help: "Channel columns in the brightness table",
		},
	)

	// Views
	ViewBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assemblylights_view_build_duration_seconds",
			Help:    "Time taken to compute a view",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"view"}, // mean, heatmap, frame, timeline
	)

	ViewRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assemblylights_view_rows",
			Help:    "Rows returned per computed view",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"view"},
	)

	// Playback
	PlaybackSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assemblylights_playback_sessions",
			Help: "Open playback sessions",
		},
	)

	PlaybackPlaying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assemblylights_playback_playing",
			Help: "Playback sessions with an active auto-advance timer",
		},
	)

	PlaybackTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assemblylights_playback_ticks_total",
			Help: "Auto-advance ticks applied across all sessions",
		},
	)

	PlaybackWraps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assemblylights_playback_wraps_total",
			Help: "Times a playback offset wrapped back to the start of the day",
		},
	)

	PlaybackSessionsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assemblylights_playback_sessions_reaped_total",
			Help: "Idle playback sessions closed by the reaper",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // views, floorplan
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a buffer was full",
		},
		[]string{"reason"}, // hub_full, client_slow
	)

	// Floor-plan fetch
	FloorplanFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assemblylights_floorplan_fetches_total",
			Help: "Upstream floor-plan image fetches",
		},
		[]string{"result"}, // success, failure, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordViewBuild records how long a view took and how many rows it produced.
func RecordViewBuild(view string, rows int, duration time.Duration) {
	ViewBuildDuration.WithLabelValues(view).Observe(duration.Seconds())
	ViewRows.WithLabelValues(view).Observe(float64(rows))
}

// RecordCacheLookup counts a hit or miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordCircuitBreakerTransition updates the state gauge and transition counter.
// States are numbered 0 closed, 1 half-open, 2 open.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
