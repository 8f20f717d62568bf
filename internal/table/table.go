// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/assemblylights/internal/models"
)

// Errors returned while building tables.
var (
	ErrUnsorted     = errors.New("timestamps are not strictly increasing")
	ErrRaggedRow    = errors.New("row width does not match column count")
	ErrDuplicateKey = errors.New("duplicate channel column")
)

// Table is an immutable brightness-by-time table.
type Table struct {
	times  []time.Time
	keys   []models.Key
	index  map[models.Key]int
	values [][]float64
	period time.Duration
}

// New builds a table from parallel rows. values[i] holds the row for
// times[i] and must have len(keys) cells. Period may be zero for tables
// that have not been resampled yet.
func New(times []time.Time, keys []models.Key, values [][]float64, period time.Duration) (*Table, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps for %d rows", ErrRaggedRow, len(times), len(values))
	}
	index := make(map[models.Key]int, len(keys))
	for i, k := range keys {
		if _, dup := index[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, k)
		}
		index[k] = i
	}
	for i := range values {
		if len(values[i]) != len(keys) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, i, len(values[i]), len(keys))
		}
		if i > 0 && !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: row %d (%s) after %s", ErrUnsorted, i, times[i].Format(time.RFC3339), times[i-1].Format(time.RFC3339))
		}
	}
	return &Table{
		times:  times,
		keys:   keys,
		index:  index,
		values: values,
		period: period,
	}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.times) }

// Width returns the number of channel columns.
func (t *Table) Width() int { return len(t.keys) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.times) == 0 }

// Period returns the sampling interval, or zero if the table is not regular.
func (t *Table) Period() time.Duration { return t.period }

// Keys returns a copy of the column keys in column order.
func (t *Table) Keys() []models.Key {
	out := make([]models.Key, len(t.keys))
	copy(out, t.keys)
	return out
}

// Times returns a copy of the row timestamps.
func (t *Table) Times() []time.Time {
	out := make([]time.Time, len(t.times))
	copy(out, t.times)
	return out
}

// Time returns the timestamp of row i.
func (t *Table) Time(i int) time.Time { return t.times[i] }

// First returns the first timestamp and false when the table is empty.
func (t *Table) First() (time.Time, bool) {
	if len(t.times) == 0 {
		return time.Time{}, false
	}
	return t.times[0], true
}

// Last returns the last timestamp and false when the table is empty.
func (t *Table) Last() (time.Time, bool) {
	if len(t.times) == 0 {
		return time.Time{}, false
	}
	return t.times[len(t.times)-1], true
}

// Has reports whether the table has a column for k.
func (t *Table) Has(k models.Key) bool {
	_, ok := t.index[k]
	return ok
}

// Value returns the cell at row i for key k. The second result is false
// when the column does not exist; a NaN value means the sample is missing.
func (t *Table) Value(i int, k models.Key) (float64, bool) {
	col, ok := t.index[k]
	if !ok {
		return math.NaN(), false
	}
	return t.values[i][col], true
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []float64 {
	out := make([]float64, len(t.keys))
	copy(out, t.values[i])
	return out
}

// IndexOf returns the row stamped exactly at ts.
func (t *Table) IndexOf(ts time.Time) (int, bool) {
	i := sort.Search(len(t.times), func(i int) bool {
		return !t.times[i].Before(ts)
	})
	if i < len(t.times) && t.times[i].Equal(ts) {
		return i, true
	}
	return 0, false
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(ts time.Time) bool) *Table {
	times := make([]time.Time, 0, len(t.times))
	values := make([][]float64, 0, len(t.values))
	for i, ts := range t.times {
		if keep(ts) {
			times = append(times, ts)
			values = append(values, t.values[i])
		}
	}
	return t.derive(times, t.keys, values)
}

// Between returns rows with from <= ts <= to.
func (t *Table) Between(from, to time.Time) *Table {
	lo := sort.Search(len(t.times), func(i int) bool {
		return !t.times[i].Before(from)
	})
	hi := sort.Search(len(t.times), func(i int) bool {
		return t.times[i].After(to)
	})
	if hi < lo {
		hi = lo
	}
	times := make([]time.Time, hi-lo)
	copy(times, t.times[lo:hi])
	values := make([][]float64, hi-lo)
	copy(values, t.values[lo:hi])
	return t.derive(times, t.keys, values)
}

// Select returns a table narrowed to the given columns, in the given order.
// Keys without a column are skipped; an empty selection yields a table with
// no columns and no rows.
func (t *Table) Select(keys []models.Key) *Table {
	cols := make([]int, 0, len(keys))
	kept := make([]models.Key, 0, len(keys))
	seen := make(map[models.Key]bool, len(keys))
	for _, k := range keys {
		col, ok := t.index[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		cols = append(cols, col)
		kept = append(kept, k)
	}
	if len(kept) == 0 {
		return t.derive(nil, nil, nil)
	}
	values := make([][]float64, len(t.values))
	for i, row := range t.values {
		narrowed := make([]float64, len(cols))
		for j, col := range cols {
			narrowed[j] = row[col]
		}
		values[i] = narrowed
	}
	times := make([]time.Time, len(t.times))
	copy(times, t.times)
	return t.derive(times, kept, values)
}

// Mean returns the NaN-skipping mean of every column. Columns with no
// samples map to NaN.
func (t *Table) Mean() map[models.Key]float64 {
	sums := make([]float64, len(t.keys))
	counts := make([]int, len(t.keys))
	for _, row := range t.values {
		for col, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sums[col] += v
			counts[col]++
		}
	}
	out := make(map[models.Key]float64, len(t.keys))
	for col, k := range t.keys {
		if counts[col] == 0 {
			out[k] = math.NaN()
			continue
		}
		out[k] = sums[col] / float64(counts[col])
	}
	return out
}

// derive builds a table that shares the receiver's period.
func (t *Table) derive(times []time.Time, keys []models.Key, values [][]float64) *Table {
	index := make(map[models.Key]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return &Table{
		times:  times,
		keys:   keys,
		index:  index,
		values: values,
		period: t.period,
	}
}
