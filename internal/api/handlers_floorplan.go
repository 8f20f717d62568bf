// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/assemblylights/internal/logging"
)

// Floorplan serves the cached floor-plan background image.
func (h *Handler) Floorplan(w http.ResponseWriter, r *http.Request) {
	if h.floorplan == nil {
		NewResponseWriter(w, r).NotFound("floor-plan proxy is disabled")
		return
	}
	img, err := h.floorplan.Get(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Last-Modified", img.FetchedAt.UTC().Format(http.TimeFormat))
	if _, err := w.Write(img.Data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Floor-plan write failed")
	}
}
