// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/playback"
	"github.com/tomtom215/assemblylights/internal/validation"
)

// SessionList is the body of GET /api/v1/playback/sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

func (h *Handler) parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, _ := time.ParseInLocation(playback.DateLayout, s, h.sessions.Location())
	return d
}

// session resolves {id}, writing 404 when it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*playback.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) writeFrame(w http.ResponseWriter, r *http.Request, frame models.Frame, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, frame)
}

// CreateSession handles POST /api/v1/playback/sessions. The body is
// optional; without a date the first day of the table is selected.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	s, err := h.sessions.Create(r.Context(), h.parseDate(req.Date))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	frame, err := s.Frame()
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(frame)
}

// ListSessions returns the open session ids.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids := h.sessions.IDs()
	NewResponseWriter(w, r).SuccessList(SessionList{Sessions: ids}, len(ids))
}

// GetSession returns the session's current frame.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	frame, err := s.Frame()
	h.writeFrame(w, r, frame, err)
}

// DeleteSession stops and removes a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id); err != nil {
		h.respondError(w, r, err)
		return
	}
	if h.hub != nil {
		h.hub.PublishSessionClosed(id)
	}
	NewResponseWriter(w, r).NoContent()
}

// SetDate handles PUT /api/v1/playback/sessions/{id}/date. Playback pauses
// and the offset rewinds to the start of the new day.
func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SetDateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respondError(w, r, err)
		return
	}
	frame, err := s.SetDate(r.Context(), h.parseDate(req.Date))
	h.writeFrame(w, r, frame, err)
}

// Seek handles PUT /api/v1/playback/sessions/{id}/offset.
func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SeekRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respondError(w, r, err)
		return
	}
	frame, err := s.Seek(*req.Offset)
	h.writeFrame(w, r, frame, err)
}

// Play starts auto-advance. Playing an already playing session is a no-op.
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	started, err := s.Play()
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if started {
		logging.Ctx(logging.ContextWithSessionID(r.Context(), s.ID())).Debug().Msg("Playback started")
	}
	frame, err := s.Frame()
	h.writeFrame(w, r, frame, err)
}

// Pause stops auto-advance, keeping the offset.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if s.Pause() {
		logging.Ctx(logging.ContextWithSessionID(r.Context(), s.ID())).Debug().Msg("Playback paused")
	}
	frame, err := s.Frame()
	h.writeFrame(w, r, frame, err)
}

// Step advances one sampling period, wrapping at the end of the day.
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	frame, err := s.Step()
	h.writeFrame(w, r, frame, err)
}
