// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package playback steps through one day of brightness data.
//
// State is an immutable cursor over a day slice; every transition returns a
// new State. A Session owns the current State of one viewer and its
// auto-advance Ticker, and a Manager keeps the open sessions.
package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
	"github.com/tomtom215/assemblylights/internal/timefilter"
)

// LabelLayout formats the frame label, e.g. "Tue Mar 01     06:05".
const LabelLayout = "Mon Jan 02     15:04"

// DateLayout is the wire format of playback dates.
const DateLayout = "2006-01-02"

var (
	// ErrOffsetOutOfRange is returned when a scrub offset falls outside the day slice.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrNoPeriod is returned for a table that has not been resampled.
	ErrNoPeriod = errors.New("brightness table has no sampling period")

	// ErrSubSecondPeriod is returned for a sampling period under one second;
	// offsets are whole seconds.
	ErrSubSecondPeriod = errors.New("sampling period must be at least one second")
)

// State is one immutable playback position: a selected day, its slice of
// the base table and a scrub offset from the first row of that slice.
// Transitions return a new State.
type State struct {
	base   *table.Table
	cutoff int
	date   time.Time
	slice  *table.Table
	offset int64
}

// NewState slices base on date starting cutoffHour into the day.
func NewState(base *table.Table, cutoffHour int, date time.Time) (State, error) {
	if err := checkPeriod(base); err != nil {
		return State{}, err
	}
	if cutoffHour < 0 || cutoffHour > 23 {
		return State{}, fmt.Errorf("cutoff hour %d outside 0-23", cutoffHour)
	}
	s := State{base: base, cutoff: cutoffHour}
	return s.WithDate(date), nil
}

func checkPeriod(base *table.Table) error {
	switch p := base.Period(); {
	case p <= 0:
		return ErrNoPeriod
	case p < time.Second:
		return fmt.Errorf("%w, got %s", ErrSubSecondPeriod, p)
	}
	return nil
}

// WithDate selects a new day and resets the offset to zero.
func (s State) WithDate(date time.Time) State {
	day := timefilter.Day(date)
	return State{
		base:   s.base,
		cutoff: s.cutoff,
		date:   day,
		slice:  timefilter.DaySlice(s.base, day, s.cutoff),
		offset: 0,
	}
}

// Date returns midnight of the selected day.
func (s State) Date() time.Time { return s.date }

// Slice returns the selected day's rows.
func (s State) Slice() *table.Table { return s.slice }

// Offset returns the scrub position in seconds.
func (s State) Offset() int64 { return s.offset }

// Period returns the sampling period in seconds.
func (s State) Period() int64 { return int64(s.base.Period() / time.Second) }

// Rows returns the number of rows in the slice.
func (s State) Rows() int { return s.slice.Len() }

// MaxOffset returns the offset of the last row.
func (s State) MaxOffset() int64 {
	if s.slice.Empty() {
		return 0
	}
	return int64(s.slice.Len()-1) * s.Period()
}

// Duration returns rows*period: one period past the last row.
func (s State) Duration() int64 {
	return int64(s.slice.Len()) * s.Period()
}

// Seek moves to offset, quantized down to the period. An offset one period
// past the last row wraps to zero; anything else outside [0, MaxOffset] is
// rejected.
func (s State) Seek(offset int64) (State, error) {
	p := s.Period()
	if offset < 0 {
		return s, fmt.Errorf("%w: %d < 0", ErrOffsetOutOfRange, offset)
	}
	q := offset - offset%p
	switch {
	case q == s.Duration():
		q = 0
	case q > s.MaxOffset():
		return s, fmt.Errorf("%w: %d > %d", ErrOffsetOutOfRange, offset, s.MaxOffset())
	}
	s.offset = q
	return s, nil
}

// Advance moves one period forward, wrapping to zero when the result
// reaches Duration. wrapped reports whether the wrap happened.
func (s State) Advance() (next State, wrapped bool) {
	if s.slice.Empty() {
		return s, false
	}
	o := s.offset + s.Period()
	if o >= s.Duration() {
		s.offset = 0
		return s, true
	}
	s.offset = o
	return s, false
}

// Timestamp returns the wall-clock time at the current offset.
func (s State) Timestamp() time.Time {
	start, ok := s.slice.First()
	if !ok {
		start = s.date.Add(time.Duration(s.cutoff) * time.Hour)
	}
	return start.Add(time.Duration(s.offset) * time.Second)
}

// Label returns the frame caption.
func (s State) Label() string {
	return s.Timestamp().Format(LabelLayout)
}

// Row returns the slice row at the current offset. ok is false for an
// empty slice.
func (s State) Row() (int, bool) {
	if s.slice.Empty() {
		return -1, false
	}
	return s.slice.IndexOf(s.Timestamp())
}

// Frame renders the fixtures at the current offset with alpha = level/100
// and a constant fill color. An empty slice renders no fixtures.
func (s State) Frame(placed []models.Fixture, color string) (models.Frame, error) {
	frame := models.Frame{
		Date:      s.date.Format(DateLayout),
		Time:      s.Timestamp(),
		Label:     s.Label(),
		Offset:    s.offset,
		MaxOffset: s.MaxOffset(),
		Step:      s.Period(),
		Rows:      s.slice.Len(),
		Fixtures:  []models.Fixture{},
	}
	if s.slice.Empty() {
		return frame, nil
	}

	row, _ := s.Row()
	lit, err := fixtures.WithLevels(placed, fixtures.RowLevels{Table: s.slice, Row: row}, fixtures.LevelOptions{
		Alpha:      fixtures.AlphaFromLevel,
		FixedColor: color,
	})
	if err != nil {
		return models.Frame{}, err
	}
	frame.Fixtures = lit
	return frame, nil
}
