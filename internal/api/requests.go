// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assemblylights/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// MeanViewRequest is the hour window of GET /views/mean.
type MeanViewRequest struct {
	StartHour int `json:"start_hour" validate:"gte=0,lte=24"`
	EndHour   int `json:"end_hour" validate:"gte=0,lte=24,gtefield=StartHour"`
}

// RangeRequest selects a date range and channels for the heatmap and
// timeline endpoints. Empty dates default to the table bounds.
type RangeRequest struct {
	Start    string   `json:"start" validate:"omitempty,calendardate"`
	End      string   `json:"end" validate:"omitempty,calendardate"`
	Channels []string `json:"channel" validate:"omitempty,dive,channelkey"`

	// AllChannels is true when no channel parameter was sent at all.
	AllChannels bool `json:"-"`
}

// Keys returns the channel selection. nil selects every channel; an empty
// slice selects none.
func (r RangeRequest) Keys() []models.Key {
	if r.AllChannels {
		return nil
	}
	keys := make([]models.Key, 0, len(r.Channels))
	for _, c := range r.Channels {
		if k, err := models.ParseKey(c); err == nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// CreateSessionRequest is the body of POST /playback/sessions.
type CreateSessionRequest struct {
	Date string `json:"date" validate:"omitempty,calendardate"`
}

// SetDateRequest is the body of PUT /playback/sessions/{id}/date.
type SetDateRequest struct {
	Date string `json:"date" validate:"required,calendardate"`
}

// SeekRequest is the body of PUT /playback/sessions/{id}/offset.
type SeekRequest struct {
	Offset *int64 `json:"offset_seconds" validate:"required,gte=0"`
}

// WebSocketRequest binds a stream to a session.
type WebSocketRequest struct {
	Session string `json:"session" validate:"omitempty,uuid"`
}

// errBadParam marks a query parameter that is not the expected type.
var errBadParam = errors.New("invalid query parameter")

// getIntParam parses an integer query parameter, returning def when absent.
func getIntParam(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadParam, key, v)
	}
	return n, nil
}

// getListParam accepts both repeated (?a=1&a=2) and comma-separated
// (?a=1,2) forms. present is false when the parameter was not sent.
func getListParam(r *http.Request, key string) (values []string, present bool) {
	raw, present := r.URL.Query()[key]
	if !present {
		return nil, false
	}
	values = []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values, true
}

func parseRangeRequest(r *http.Request) RangeRequest {
	q := r.URL.Query()
	channels, present := getListParam(r, "channel")
	return RangeRequest{
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Channels:    channels,
		AllChannels: !present,
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

// errBadBody marks a request body that is not valid JSON for the endpoint.
var errBadBody = errors.New("invalid request body")
