// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package fixtures

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

// MissingKeyError reports a fixture whose channel key has no brightness column.
type MissingKeyError struct {
	Key  models.Key
	Name string
}

func (e *MissingKeyError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("fixture %q: channel %s not found in brightness table", e.Name, e.Key)
	}
	return fmt.Sprintf("channel %s not found in brightness table", e.Key)
}

// LevelSource resolves a brightness level per channel key. ok is false when
// the key is unknown; a known key may still yield NaN for a missing sample.
type LevelSource interface {
	Level(k models.Key) (level float64, ok bool)
}

// MeanLevels adapts per-column means to a LevelSource.
type MeanLevels map[models.Key]float64

// Level implements LevelSource.
func (m MeanLevels) Level(k models.Key) (float64, bool) {
	v, ok := m[k]
	return v, ok
}

// RowLevels reads levels from a single row of a brightness table.
type RowLevels struct {
	Table *table.Table
	Row   int
}

// Level implements LevelSource.
func (r RowLevels) Level(k models.Key) (float64, bool) {
	if r.Table == nil || !r.Table.Has(k) {
		return 0, false
	}
	if r.Row < 0 || r.Row >= r.Table.Len() {
		return math.NaN(), true
	}
	return r.Table.Value(r.Row, k)
}

// AlphaMode selects how fixture opacity follows the level.
type AlphaMode int

const (
	// AlphaOpaque draws every fixture at full opacity.
	AlphaOpaque AlphaMode = iota
	// AlphaFromLevel uses level/100, so a dark fixture is fully transparent.
	AlphaFromLevel
)

// LevelOptions controls how WithLevels decorates fixtures.
type LevelOptions struct {
	Alpha AlphaMode

	// Color maps a level to a fill color. When nil, FixedColor is used.
	Color func(level float64) string

	FixedColor string
}

// WithLevels returns a copy of fixtures with Level, Alpha, Color and HasData
// resolved from src. Any fixture whose key src does not know yields a
// *MissingKeyError. Missing samples leave the fixture transparent with
// HasData false.
func WithLevels(fixtures []models.Fixture, src LevelSource, opts LevelOptions) ([]models.Fixture, error) {
	out := make([]models.Fixture, len(fixtures))
	for i, f := range fixtures {
		level, ok := src.Level(f.Key())
		if !ok {
			return nil, &MissingKeyError{Key: f.Key(), Name: f.Name}
		}

		f.HasData = !math.IsNaN(level)
		f.Level = 0
		if f.HasData {
			f.Level = level
		}
		switch opts.Alpha {
		case AlphaFromLevel:
			f.Alpha = clamp01(f.Level / 100)
		default:
			// Missing data is still drawn, in the NaN color.
			f.Alpha = 1
		}

		switch {
		case opts.Color != nil:
			if f.HasData {
				f.Color = opts.Color(level)
			} else {
				f.Color = opts.Color(math.NaN())
			}
		default:
			f.Color = opts.FixedColor
		}
		out[i] = f
	}
	return out, nil
}

// Verify checks that every position group with coordinates has a column in
// tbl. All missing keys are reported, joined.
func Verify(positions []models.FixturePosition, tbl *table.Table) error {
	var errs []error
	for _, p := range positions {
		if !p.HasCoordinates() {
			continue
		}
		if !tbl.Has(p.Key()) {
			errs = append(errs, &MissingKeyError{Key: p.Key(), Name: p.Name})
		}
	}
	return errors.Join(errs...)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
