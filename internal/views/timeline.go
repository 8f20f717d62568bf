// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/tomtom215/assemblylights/internal/colormap"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/timefilter"
)

// ErrNoTimelineData is returned when no selected channel has at least two
// samples in the range, which is the minimum a line chart can draw.
var ErrNoTimelineData = errors.New("no channel has enough samples to chart")

// RenderTimeline writes a PNG line chart of the selected channels' hourly
// levels over the calendar days start through end. Selection rules match
// HeatmapView; at most TimelineMaxSeries channels are drawn.
func (s *Service) RenderTimeline(ctx context.Context, w io.Writer, start, end time.Time, keys []models.Key) error {
	started := time.Now()
	start, end = s.resolveRange(start, end)

	tbl := timefilter.DateRange(s.snap.Hourly, start, end)
	if keys != nil {
		tbl = timefilter.SelectKeys(tbl, keys)
	}
	selected := tbl.Keys()
	if limit := s.cfg.TimelineMaxSeries; limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	hues, err := colormap.New(s.meanPalette, 0, float64(max(len(selected)-1, 1)))
	if err != nil {
		return err
	}

	series := make([]chart.Series, 0, len(selected))
	for i, k := range selected {
		var xs []time.Time
		var ys []float64
		for row := 0; row < tbl.Len(); row++ {
			v, _ := tbl.Value(row, k)
			if math.IsNaN(v) {
				continue
			}
			xs = append(xs, tbl.Time(row))
			ys = append(ys, v)
		}
		if len(xs) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    s.Label(k),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: hues.RGBA(float64(i), 1),
				StrokeWidth: 1.5,
			},
		})
	}
	if len(series) == 0 {
		return ErrNoTimelineData
	}

	graph := chart.Chart{
		Title:      titlePrefix + start.Format(titleDateLayout) + " - " + end.Format(titleDateLayout),
		Width:      s.cfg.TimelineWidth,
		Height:     s.cfg.TimelineHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01 15:04"),
		},
		YAxis: chart.YAxis{
			Name:  "Level (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}

	metrics.RecordViewBuild("timeline", len(series), time.Since(started))
	logging.Ctx(ctx).Debug().
		Int("series", len(series)).
		Str("start", start.Format(rangeLayout)).
		Str("end", end.Format(rangeLayout)).
		Msg("Rendered timeline chart")
	return nil
}
