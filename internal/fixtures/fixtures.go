// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package fixtures expands fixture position groups into plottable fixtures
// and joins brightness levels onto them by channel key.
//
// Every function here is pure: inputs are never modified and the same inputs
// always produce the same output.
package fixtures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/assemblylights/internal/models"
)

// Default layout constants for the Assembly Rooms first floor plan.
const (
	// DefaultScaler converts position-table millimetres to plot pixels (200 PPI / 25.4).
	DefaultScaler = 7.874

	// DefaultPlotWidth and DefaultPlotHeight are the floor-plan image size in pixels.
	DefaultPlotWidth  = 5375
	DefaultPlotHeight = 3519

	DefaultSizeMultiplier = 8
)

// ErrCoordinates is returned when a position group has malformed coordinate lists.
var ErrCoordinates = errors.New("invalid fixture coordinates")

// Layout holds the pixel-plane transform applied to raw fixture coordinates.
type Layout struct {
	Scaler         float64
	PlotHeight     float64
	ShiftX         float64
	ShiftY         float64
	SizeMultiplier float64

	// Delimiter separates entries of the X and Y coordinate lists.
	Delimiter string
}

// DefaultLayout returns the layout used by the floor-plan views.
func DefaultLayout() Layout {
	return Layout{
		Scaler:         DefaultScaler,
		PlotHeight:     DefaultPlotHeight,
		SizeMultiplier: DefaultSizeMultiplier,
		Delimiter:      ",",
	}
}

// RenderX maps a raw X coordinate onto the plot.
func (l Layout) RenderX(raw float64) float64 {
	return raw*l.Scaler + l.ShiftX
}

// RenderY maps a raw Y coordinate onto the plot. The position table measures
// from the top edge while the plot's origin is bottom-left.
func (l Layout) RenderY(raw float64) float64 {
	return l.PlotHeight - (raw*l.Scaler + l.ShiftY)
}

// Build expands each position group into one fixture per coordinate pair.
// Groups without coordinates are skipped. IDs are assigned in output order.
func Build(positions []models.FixturePosition, layout Layout) ([]models.Fixture, error) {
	delim := layout.Delimiter
	if delim == "" {
		delim = ","
	}

	out := make([]models.Fixture, 0, len(positions))
	for _, p := range positions {
		if !p.HasCoordinates() {
			continue
		}

		xs, err := parseList(p.XList, delim)
		if err != nil {
			return nil, fmt.Errorf("%w: %s X: %v", ErrCoordinates, p.Key(), err)
		}
		ys, err := parseList(p.YList, delim)
		if err != nil {
			return nil, fmt.Errorf("%w: %s Y: %v", ErrCoordinates, p.Key(), err)
		}
		if len(xs) != len(ys) {
			return nil, fmt.Errorf("%w: %s has %d X values and %d Y values",
				ErrCoordinates, p.Key(), len(xs), len(ys))
		}

		key := p.Key()
		for i := range xs {
			out = append(out, models.Fixture{
				ID:          len(out),
				Area:        key.Area,
				Channel:     key.Channel,
				Name:        p.Name,
				DisplaySize: p.Size * layout.SizeMultiplier,
				X:           layout.RenderX(xs[i]),
				Y:           layout.RenderY(ys[i]),
			})
		}
	}
	return out, nil
}

func parseList(s, delim string) ([]float64, error) {
	parts := strings.Split(s, delim)
	vals := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite coordinate %q", part)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// FilterMinArea keeps fixtures whose numeric area is at least threshold.
// Fixtures with a non-numeric area are dropped. A threshold of zero or less
// keeps everything.
func FilterMinArea(fixtures []models.Fixture, threshold int) []models.Fixture {
	out := make([]models.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		if threshold > 0 {
			n, ok := f.Key().AreaNumber()
			if !ok || n < threshold {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// Keys returns the distinct fixture keys in first-seen order.
func Keys(fixtures []models.Fixture) []models.Key {
	seen := make(map[models.Key]struct{}, len(fixtures))
	keys := make([]models.Key, 0, len(fixtures))
	for _, f := range fixtures {
		k := f.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
