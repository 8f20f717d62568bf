// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package views assembles render-ready data sources from a loaded snapshot:
// the mean-brightness floor-plan overlay, the timeline heatmap, the
// multi-select options and the static canvas hints.
//
// The Service is safe for concurrent use. Everything it reads is immutable
// after load, and computed views are memoized in a TTL cache keyed by the
// request parameters.
package views

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/assemblylights/internal/cache"
	"github.com/tomtom215/assemblylights/internal/colormap"
	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/loader"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/timefilter"
)

// ErrInvalidWindow is returned for an hour window outside 0 <= start <= end <= 24.
var ErrInvalidWindow = errors.New("invalid hour window")

const (
	// DefaultMinArea excludes the corridor areas from the mean view.
	DefaultMinArea = 10

	titlePrefix     = "Assembly Rooms Lighting Use: "
	titleDateLayout = "02/01/06"
	rangeLayout     = "2006-01-02"
)

// Config controls view construction.
type Config struct {
	MinArea        int
	MeanPalette    string
	HeatmapPalette string
	NaNColor       string
	Location       *time.Location

	Canvas models.Canvas

	CacheTTL     time.Duration
	CacheEntries int

	TimelineWidth     int
	TimelineHeight    int
	TimelineMaxSeries int
}

// DefaultConfig returns the Assembly Rooms first-floor settings.
func DefaultConfig() Config {
	return Config{
		MinArea:        DefaultMinArea,
		MeanPalette:    colormap.PaletteGreenRed,
		HeatmapPalette: colormap.PaletteAmber,
		NaNColor:       colormap.DefaultNaNColor,
		Location:       time.Local,
		Canvas: models.Canvas{
			Width:           fixtures.DefaultPlotWidth,
			Height:          fixtures.DefaultPlotHeight,
			DisplayScale:    6,
			Background:      "#3b4049",
			OffColor:        "#5a5d63",
			ImageURL:        "http://groups.inf.ed.ac.uk/enhanced/wordpress/wp-content/uploads/FirstFloorPlan_trimmed_simple_noDoor_inv.png",
			LabelX:          100,
			PlaybackLabelX:  50,
			LabelY:          3050,
			LabelColor:      "#e2e2e2",
			LabelFontSizePt: 40,
		},
		CacheTTL:          10 * time.Minute,
		CacheEntries:      256,
		TimelineWidth:     1000,
		TimelineHeight:    600,
		TimelineMaxSeries: 12,
	}
}

// Service builds views over one snapshot.
type Service struct {
	snap   *loader.Snapshot
	placed []models.Fixture
	cfg    Config

	meanPalette    []string
	heatmapPalette []string
	areaNames      map[string]string
	channelNames   map[models.Key]string

	cache *cache.Cache
}

// New validates the configured palettes and prepares a Service. placed are
// the fixtures built from the snapshot's position table.
func New(snap *loader.Snapshot, placed []models.Fixture, cfg Config) (*Service, error) {
	if snap == nil {
		return nil, errors.New("views: nil snapshot")
	}
	meanPalette, err := colormap.Palette(cfg.MeanPalette)
	if err != nil {
		return nil, fmt.Errorf("mean palette: %w", err)
	}
	heatmapPalette, err := colormap.Palette(cfg.HeatmapPalette)
	if err != nil {
		return nil, fmt.Errorf("heatmap palette: %w", err)
	}
	if cfg.NaNColor == "" {
		cfg.NaNColor = colormap.DefaultNaNColor
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{
		snap:           snap,
		placed:         placed,
		cfg:            cfg,
		meanPalette:    meanPalette,
		heatmapPalette: heatmapPalette,
		areaNames:      snap.AreaNameIndex(),
		channelNames:   snap.ChannelNameIndex(),
		cache:          cache.New("views", cfg.CacheTTL, cfg.CacheEntries),
	}, nil
}

// Cache exposes the view cache so it can be swept by a janitor service.
func (s *Service) Cache() *cache.Cache { return s.cache }

// Location is the zone the brightness timestamps were parsed in.
func (s *Service) Location() *time.Location { return s.cfg.Location }

// Canvas returns the static render hints.
func (s *Service) Canvas() models.Canvas { return s.cfg.Canvas }

// DateBounds returns the first and last calendar day of the heatmap table.
func (s *Service) DateBounds() (first, last time.Time, ok bool) {
	f, ok := s.snap.Hourly.First()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	l, _ := s.snap.Hourly.Last()
	return timefilter.Day(f), timefilter.Day(l), true
}

// Label returns the display label of a channel.
func (s *Service) Label(k models.Key) string {
	return loader.ChannelLabel(k, s.areaNames, s.channelNames)
}

type meanParams struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MeanView computes the mean brightness of every main-area fixture over the
// hours startHour < h <= endHour.
func (s *Service) MeanView(ctx context.Context, startHour, endHour int) (*models.MeanView, error) {
	if startHour < 0 || endHour > 24 || startHour > endHour {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidWindow, startHour, endHour)
	}

	key := cache.GenerateKey("mean", meanParams{Start: startHour, End: endHour})
	v, err := s.cache.GetOrCompute(key, func() (interface{}, error) {
		return s.buildMean(ctx, startHour, endHour)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MeanView), nil
}

func (s *Service) buildMean(ctx context.Context, startHour, endHour int) (*models.MeanView, error) {
	started := time.Now()

	window := timefilter.HourWindow(s.snap.Points, startHour, endHour)
	means := fixtures.MeanLevels(timefilter.Mean(window))
	shown := fixtures.FilterMinArea(s.placed, s.cfg.MinArea)

	levels := make([]float64, 0, len(shown))
	for _, f := range shown {
		if v, ok := means[f.Key()]; ok && !math.IsNaN(v) {
			levels = append(levels, v)
		}
	}
	mapper, err := colormap.NewAuto(s.meanPalette, levels)
	if err != nil {
		return nil, err
	}
	mapper = mapper.WithNaNColor(s.cfg.NaNColor)

	out, err := fixtures.WithLevels(shown, means, fixtures.LevelOptions{
		Alpha: fixtures.AlphaOpaque,
		Color: mapper.Color,
	})
	if err != nil {
		return nil, err
	}

	view := &models.MeanView{
		Label:     fmt.Sprintf("%d:00 - %d:00", startHour, endHour),
		StartHour: startHour,
		EndHour:   endHour,
		Rows:      window.Len(),
		Low:       mapper.Low(),
		High:      mapper.High(),
		Palette:   mapper.Palette(),
		Fixtures:  out,
	}

	metrics.RecordViewBuild("mean", len(out), time.Since(started))
	logging.Ctx(ctx).Debug().
		Int("start_hour", startHour).
		Int("end_hour", endHour).
		Int("rows", window.Len()).
		Int("fixtures", len(out)).
		Msg("Built mean view")
	return view, nil
}

type heatmapParams struct {
	Start string       `json:"start"`
	End   string       `json:"end"`
	All   bool         `json:"all"`
	Keys  []models.Key `json:"keys"`
}

// HeatmapView returns the long-form timeline for the calendar days start
// through end. A zero start or end defaults to the table bounds. A nil keys
// slice selects every channel; an empty non-nil slice selects none and
// yields a view with no cells.
func (s *Service) HeatmapView(ctx context.Context, start, end time.Time, keys []models.Key) (*models.HeatmapView, error) {
	start, end = s.resolveRange(start, end)

	params := heatmapParams{
		Start: start.Format(rangeLayout),
		End:   end.Format(rangeLayout),
		All:   keys == nil,
		Keys:  keys,
	}
	v, err := s.cache.GetOrCompute(cache.GenerateKey("heatmap", params), func() (interface{}, error) {
		return s.buildHeatmap(ctx, start, end, keys)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.HeatmapView), nil
}

func (s *Service) resolveRange(start, end time.Time) (time.Time, time.Time) {
	first, last, ok := s.DateBounds()
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	if !ok {
		return start, end
	}
	return start.In(s.cfg.Location), end.In(s.cfg.Location)
}

func (s *Service) buildHeatmap(ctx context.Context, start, end time.Time, keys []models.Key) (*models.HeatmapView, error) {
	started := time.Now()

	tbl := timefilter.DateRange(s.snap.Hourly, start, end)
	if keys != nil {
		tbl = timefilter.SelectKeys(tbl, keys)
	}
	cells := timefilter.Stack(tbl, s.Label)

	levels := make([]float64, len(cells))
	for i, c := range cells {
		levels[i] = c.Level
	}
	mapper, err := colormap.NewAuto(s.heatmapPalette, levels)
	if err != nil {
		return nil, err
	}
	for i := range cells {
		cells[i].Color = mapper.Color(cells[i].Level)
	}

	selected := tbl.Keys()
	factors := make([]string, len(selected))
	for i, k := range selected {
		factors[len(selected)-1-i] = s.Label(k)
	}

	view := &models.HeatmapView{
		Title:       titlePrefix + start.Format(titleDateLayout) + " - " + end.Format(titleDateLayout),
		Start:       start.Format(rangeLayout),
		End:         end.Format(rangeLayout),
		RectWidthMs: s.snap.Hourly.Period().Milliseconds(),
		Factors:     factors,
		Palette:     mapper.Palette(),
		Low:         mapper.Low(),
		High:        mapper.High(),
		Cells:       cells,
	}

	metrics.RecordViewBuild("heatmap", len(cells), time.Since(started))
	logging.Ctx(ctx).Debug().
		Str("start", view.Start).
		Str("end", view.End).
		Int("channels", len(selected)).
		Int("cells", len(cells)).
		Msg("Built heatmap view")
	return view, nil
}
