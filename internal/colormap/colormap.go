// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package colormap buckets brightness levels into discrete palette entries.
//
// A value v maps to index round((v-low)/(high-low)*(n-1)) clamped to the
// palette. There is no interpolation between neighbouring entries.
package colormap

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultNaNColor is returned for missing samples.
const DefaultNaNColor = "#808080"

var (
	// ErrEmptyPalette is returned for a palette with no entries.
	ErrEmptyPalette = errors.New("palette has no colors")

	// ErrUnknownPalette is returned by Palette for an unregistered name.
	ErrUnknownPalette = errors.New("unknown palette")

	hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
)

// Mapper is an immutable linear bucket mapper.
type Mapper struct {
	palette  []string
	colors   []drawing.Color
	low      float64
	high     float64
	nanColor string
}

// New builds a mapper over [low, high]. Bounds may be given in either order.
func New(palette []string, low, high float64) (*Mapper, error) {
	if err := ValidatePalette(palette); err != nil {
		return nil, err
	}
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("mapper bounds must be finite, got [%v, %v]", low, high)
	}
	if low > high {
		low, high = high, low
	}

	p := make([]string, len(palette))
	colors := make([]drawing.Color, len(palette))
	for i, c := range palette {
		p[i] = strings.ToUpper(c)
		colors[i] = drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
	}
	return &Mapper{
		palette:  p,
		colors:   colors,
		low:      low,
		high:     high,
		nanColor: DefaultNaNColor,
	}, nil
}

// NewAuto builds a mapper whose bounds are the minimum and maximum of the
// finite values. With no finite values both bounds are zero.
func NewAuto(palette []string, values []float64) (*Mapper, error) {
	low, high := Bounds(values)
	return New(palette, low, high)
}

// Bounds returns the min and max of the finite values, or 0, 0.
func Bounds(values []float64) (low, high float64) {
	first := true
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			low, high = v, v
			first = false
			continue
		}
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	return low, high
}

// WithNaNColor returns a copy of m that renders missing samples as c.
func (m *Mapper) WithNaNColor(c string) *Mapper {
	cp := *m
	cp.nanColor = c
	return &cp
}

// Low returns the lower bound.
func (m *Mapper) Low() float64 { return m.low }

// High returns the upper bound.
func (m *Mapper) High() float64 { return m.high }

// Len returns the palette size.
func (m *Mapper) Len() int { return len(m.palette) }

// Palette returns a copy of the palette.
func (m *Mapper) Palette() []string {
	out := make([]string, len(m.palette))
	copy(out, m.palette)
	return out
}

// Index returns the palette index for v, or -1 for NaN.
func (m *Mapper) Index(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	n := len(m.palette)
	if m.high == m.low || n == 1 {
		return 0
	}
	idx := math.Round((v - m.low) / (m.high - m.low) * float64(n-1))
	switch {
	case idx < 0:
		return 0
	case idx > float64(n-1):
		return n - 1
	default:
		return int(idx)
	}
}

// Color returns the "#RRGGBB" entry for v.
func (m *Mapper) Color(v float64) string {
	i := m.Index(v)
	if i < 0 {
		return m.nanColor
	}
	return m.palette[i]
}

// RGBA returns the entry for v as a drawing color with the given alpha (0-1).
func (m *Mapper) RGBA(v, alpha float64) drawing.Color {
	i := m.Index(v)
	var c drawing.Color
	if i < 0 {
		c = drawing.ColorFromHex(strings.TrimPrefix(m.nanColor, "#"))
	} else {
		c = m.colors[i]
	}
	return c.WithAlpha(uint8(math.Round(clamp(alpha, 0, 1) * 255)))
}

// ValidatePalette checks that every entry is a "#RGB" or "#RRGGBB" color.
func ValidatePalette(palette []string) error {
	if len(palette) == 0 {
		return ErrEmptyPalette
	}
	for i, c := range palette {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("palette entry %d: invalid color %q", i, c)
		}
	}
	return nil
}

// Palette returns a copy of a built-in palette.
func Palette(name string) ([]string, error) {
	p, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPalette, name)
	}
	out := make([]string, len(p))
	copy(out, p)
	return out, nil
}

// MustPalette is Palette for names known at compile time.
func MustPalette(name string) []string {
	p, err := Palette(name)
	if err != nil {
		panic(err)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
