// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package api serves the floor-plan views and playback sessions over HTTP.
//
// Handler methods are split by area:
//   - handlers.go: Handler, constructor, WebSocket upgrade
//   - handlers_health.go: liveness and readiness
//   - handlers_views.go: canvas, mean, heatmap, timeline, selector options
//   - handlers_playback.go: playback session control
//   - handlers_floorplan.go: floor-plan image proxy
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/assemblylights/internal/floorplan"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/playback"
	"github.com/tomtom215/assemblylights/internal/validation"
	"github.com/tomtom215/assemblylights/internal/views"
	ws "github.com/tomtom215/assemblylights/internal/websocket"
)

// HandlerConfig holds the request-facing settings.
type HandlerConfig struct {
	// AllowedWSOrigins lists origins allowed to open a stream. "*" allows any.
	AllowedWSOrigins []string
	Version          string
}

// Handler holds the services behind the API.
type Handler struct {
	views     *views.Service
	sessions  *playback.Manager
	hub       *ws.Hub
	floorplan *floorplan.Fetcher
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates the handler. fp may be nil when the image proxy is
// disabled.
func NewHandler(v *views.Service, sessions *playback.Manager, hub *ws.Hub, fp *floorplan.Fetcher, cfg HandlerConfig) *Handler {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		views:     v,
		sessions:  sessions,
		hub:       hub,
		floorplan: fp,
		config:    cfg,
		startTime: time.Now(),
	}
}

// respondError maps service errors to status codes and logs the rest.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		rw.ValidationError(ve.Error(), ve.Details())
	case errors.Is(err, errBadParam), errors.Is(err, errBadBody):
		rw.BadRequest(err.Error())
	case errors.Is(err, views.ErrInvalidWindow):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
	case errors.Is(err, playback.ErrSessionNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, playback.ErrOffsetOutOfRange):
		rw.Error(http.StatusBadRequest, ErrCodeOffsetOutOfRange, err.Error())
	case errors.Is(err, playback.ErrTooManySessions):
		rw.TooManyRequests(err.Error())
	case errors.Is(err, floorplan.ErrUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Floor-plan image unavailable")
		rw.Error(http.StatusServiceUnavailable, ErrCodeUpstreamFailed, "floor-plan image unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		rw.InternalError("internal error")
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin rejects requests without an Origin header; browsers
// always send one.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.config.AllowedWSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades GET /api/v1/ws. With ?session=<id> the stream carries
// that session's frames, starting with its current one.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	req := WebSocketRequest{Session: r.URL.Query().Get("session")}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respondError(w, r, err)
		return
	}
	var session *playback.Session
	if req.Session != "" {
		s, err := h.sessions.Get(req.Session)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		session = s
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, req.Session)
	h.hub.Register <- client
	client.Start()

	if session != nil {
		if frame, err := session.Frame(); err == nil {
			h.hub.PublishFrame(frame)
		}
	}
}
