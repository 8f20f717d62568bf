// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package table

import (
	"fmt"
	"math"
	"time"
)

// Policy selects how grid points without an exact sample are filled.
type Policy string

const (
	// PolicyExact keeps only samples stamped exactly on the grid; other
	// grid points are NaN.
	PolicyExact Policy = "exact"

	// PolicyForwardFill carries the most recent sample forward.
	PolicyForwardFill Policy = "ffill"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyExact, PolicyForwardFill:
		return Policy(s), nil
	case "":
		return PolicyExact, nil
	default:
		return "", fmt.Errorf("unknown resample policy %q (want %q or %q)", s, PolicyExact, PolicyForwardFill)
	}
}

// Resample returns a table on a regular grid from the first timestamp to
// the last, spaced by period.
func (t *Table) Resample(period time.Duration, policy Policy) (*Table, error) {
	if period <= 0 {
		return nil, fmt.Errorf("resample period must be positive, got %s", period)
	}
	if len(t.times) == 0 {
		return t.derivePeriod(nil, nil, period), nil
	}

	start, end := t.times[0], t.times[len(t.times)-1]
	n := int(end.Sub(start)/period) + 1
	times := make([]time.Time, 0, n)
	values := make([][]float64, 0, n)

	src := 0
	for ts := start; !ts.After(end); ts = ts.Add(period) {
		// advance src to the last sample at or before ts
		for src+1 < len(t.times) && !t.times[src+1].After(ts) {
			src++
		}
		times = append(times, ts)
		switch {
		case t.times[src].Equal(ts):
			values = append(values, t.values[src])
		case policy == PolicyForwardFill && !t.times[src].After(ts):
			values = append(values, t.values[src])
		default:
			values = append(values, nanRow(len(t.keys)))
		}
	}
	return t.derivePeriod(times, values, period), nil
}

func (t *Table) derivePeriod(times []time.Time, values [][]float64, period time.Duration) *Table {
	out := t.derive(times, t.keys, values)
	out.period = period
	return out
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
