// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package table holds the time-indexed brightness table.
//
// A Table is immutable once built: rows are timestamps in strictly
// increasing order, columns are channel keys, and cells are brightness
// percentages with NaN marking a missing sample. Every operation that
// narrows or reshapes a table returns a new value; callers may share a
// Table between goroutines without locking.
package table
