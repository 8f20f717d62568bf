// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status           string     `json:"status"`
	Version          string     `json:"version"`
	Uptime           float64    `json:"uptime_seconds"`
	DataLoaded       bool       `json:"data_loaded"`
	FirstDate        string     `json:"first_date,omitempty"`
	LastDate         string     `json:"last_date,omitempty"`
	Sessions         int        `json:"playback_sessions"`
	WebSocketClients int        `json:"websocket_clients"`
	FloorplanEnabled bool       `json:"floorplan_enabled"`
	FloorplanCached  *time.Time `json:"floorplan_cached_at,omitempty"`
}

func (h *Handler) dataLoaded() bool {
	if h.views == nil || h.sessions == nil {
		return false
	}
	_, _, ok := h.views.DateBounds()
	return ok
}

// Health reports overall status. A missing floor-plan image only degrades
// the service; fixtures still render on the plain background.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:           "healthy",
		Version:          h.config.Version,
		Uptime:           time.Since(h.startTime).Seconds(),
		DataLoaded:       h.dataLoaded(),
		FloorplanEnabled: h.floorplan != nil,
	}
	if status.DataLoaded {
		first, last, _ := h.views.DateBounds()
		status.FirstDate = first.Format(dateLayout)
		status.LastDate = last.Format(dateLayout)
		status.Sessions = h.sessions.Len()
	} else {
		status.Status = "unhealthy"
	}
	if h.hub != nil {
		status.WebSocketClients = h.hub.GetClientCount()
	}
	if h.floorplan != nil {
		if img := h.floorplan.Cached(); img != nil {
			fetched := img.FetchedAt
			status.FloorplanCached = &fetched
		} else if status.Status == "healthy" {
			status.Status = "degraded"
		}
	}
	WriteSuccess(w, r, status)
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 503 until the tables are loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.dataLoaded() {
		NewResponseWriter(w, r).ServiceUnavailable("brightness data not loaded")
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"ready":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}
