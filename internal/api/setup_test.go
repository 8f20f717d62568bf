// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assemblylights/internal/loader"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/playback"
	"github.com/tomtom215/assemblylights/internal/table"
	"github.com/tomtom215/assemblylights/internal/views"
	ws "github.com/tomtom215/assemblylights/internal/websocket"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

var (
	ballroom = models.Key{Area: "10", Channel: "1"}
	bar      = models.Key{Area: "21", Channel: "3"}
	testDay  = time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)
)

const testOrigin = "http://localhost:8050"

// testEnv is a router over two hours of five-minute data on 2016-03-01.
type testEnv struct {
	handler *Handler
	router  http.Handler
	hub     *ws.Hub
}

func mustTable(t *testing.T, times []time.Time, keys []models.Key, values [][]float64, period time.Duration) *table.Table {
	t.Helper()
	tbl, err := table.New(times, keys, values, period)
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}
	return tbl
}

func newTestSnapshot(t *testing.T) *loader.Snapshot {
	t.Helper()
	keys := []models.Key{ballroom, bar}

	const period = 5 * time.Minute
	var times []time.Time
	var values [][]float64
	for i := 0; i < 24; i++ {
		times = append(times, testDay.Add(6*time.Hour+time.Duration(i)*period))
		values = append(values, []float64{float64(40 + i), 100})
	}
	points := mustTable(t, times, keys, values, period)
	hourly := mustTable(t,
		[]time.Time{testDay.Add(6 * time.Hour), testDay.Add(7 * time.Hour)},
		keys,
		[][]float64{{45, 100}, {57, 100}},
		time.Hour,
	)

	return &loader.Snapshot{
		Raw:          points,
		Points:       points,
		Hourly:       hourly,
		ChannelNames: []models.ChannelName{{Key: ballroom, Name: "Centre"}, {Key: bar, Name: "Counter"}},
		AreaNames:    []models.AreaName{{ID: "10", Name: "Ballroom"}, {ID: "21", Name: "Bar"}},
	}
}

func newTestEnv(t *testing.T, mw *ChiMiddlewareConfig) *testEnv {
	t.Helper()
	snap := newTestSnapshot(t)
	placed := []models.Fixture{
		{ID: 0, Area: "10", Channel: "1", Name: "Ballroom centre", X: 100, Y: 200, DisplaySize: 8},
		{ID: 1, Area: "21", Channel: "3", Name: "Bar counter", X: 300, Y: 400, DisplaySize: 8},
	}

	vcfg := views.DefaultConfig()
	vcfg.Location = time.UTC
	vcfg.Canvas.ImageProxyPath = FloorplanPath
	svc, err := views.New(snap, placed, vcfg)
	if err != nil {
		t.Fatalf("views.New() error = %v", err)
	}

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	pcfg := playback.DefaultConfig()
	pcfg.RefreshInterval = time.Hour
	sessions, err := playback.NewManager(snap.Points, placed, pcfg, hub)
	if err != nil {
		t.Fatalf("playback.NewManager() error = %v", err)
	}
	t.Cleanup(sessions.Shutdown)

	h := NewHandler(svc, sessions, hub, nil, HandlerConfig{AllowedWSOrigins: []string{testOrigin}})
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}
	return &testEnv{
		handler: h,
		router:  NewRouter(h, NewChiMiddleware(mw)).SetupChi(),
		hub:     hub,
	}
}

// envelope is APIResponse with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	env := decode(t, w, nil)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}
