// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/validation"
	"github.com/tomtom215/assemblylights/internal/views"
)

// dateLayout is the wire format of every date parameter.
const dateLayout = "2006-01-02"

// DateBounds is the body of GET /api/v1/dates.
type DateBounds struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Timezone string `json:"timezone"`
}

// Canvas returns the floor-plan render hints.
func (h *Handler) Canvas(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.views.Canvas())
}

// Dates returns the calendar range the date pickers may choose from.
func (h *Handler) Dates(w http.ResponseWriter, r *http.Request) {
	first, last, ok := h.views.DateBounds()
	if !ok {
		WriteSuccess(w, r, DateBounds{Timezone: h.views.Location().String()})
		return
	}
	WriteSuccess(w, r, DateBounds{
		First:    first.Format(dateLayout),
		Last:     last.Format(dateLayout),
		Timezone: h.views.Location().String(),
	})
}

// MeanView handles GET /api/v1/views/mean?start_hour=&end_hour=.
// The window defaults to the whole day, 0 to 24.
func (h *Handler) MeanView(w http.ResponseWriter, r *http.Request) {
	var req MeanViewRequest
	var err error
	if req.StartHour, err = getIntParam(r, "start_hour", 0); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.EndHour, err = getIntParam(r, "end_hour", 24); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.views.MeanView(r.Context(), req.StartHour, req.EndHour)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// parseRange validates a RangeRequest and resolves its dates in the data
// zone. Absent dates stay zero.
func (h *Handler) parseRange(r *http.Request) (RangeRequest, time.Time, time.Time, error) {
	req := parseRangeRequest(r)
	if err := validation.ValidateStruct(&req); err != nil {
		return req, time.Time{}, time.Time{}, err
	}
	loc := h.views.Location()
	var start, end time.Time
	if req.Start != "" {
		start, _ = time.ParseInLocation(dateLayout, req.Start, loc)
	}
	if req.End != "" {
		end, _ = time.ParseInLocation(dateLayout, req.End, loc)
	}
	return req, start, end, nil
}

// HeatmapView handles GET /api/v1/views/heatmap?start=&end=&channel=.
// Without channel every channel is shown; channel= with no value shows none.
func (h *Handler) HeatmapView(w http.ResponseWriter, r *http.Request) {
	req, start, end, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.views.HeatmapView(r.Context(), start, end, req.Keys())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}

// TimelinePNG handles GET /api/v1/views/timeline.png. It takes the heatmap
// parameters and answers 204 when nothing can be charted.
func (h *Handler) TimelinePNG(w http.ResponseWriter, r *http.Request) {
	req, start, end, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.views.RenderTimeline(r.Context(), &buf, start, end, req.Keys()); err != nil {
		if errors.Is(err, views.ErrNoTimelineData) {
			logging.Ctx(r.Context()).Debug().Msg("Timeline selection has no data")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Timeline write failed")
	}
}

// Areas lists the area selector options.
func (h *Handler) Areas(w http.ResponseWriter, r *http.Request) {
	areas := h.views.Areas()
	NewResponseWriter(w, r).SuccessList(areas, len(areas))
}

// Channels lists channel options, optionally filtered by ?area= (ids or
// names, repeated or comma-separated).
func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	areas, _ := getListParam(r, "area")
	channels := h.views.Channels(areas)
	NewResponseWriter(w, r).SuccessList(channels, len(channels))
}
