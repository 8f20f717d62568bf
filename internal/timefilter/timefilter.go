// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package timefilter derives time-windowed views of a brightness table.
// Every filter returns a new table; an empty result is not an error.
package timefilter

import (
	"math"
	"time"

	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

// TimeLabelLayout formats heatmap hover labels (day/month first).
const TimeLabelLayout = "02/01 15:04:05"

// HourWindow keeps rows whose hour of day h satisfies startHour < h <= endHour.
// With 0 and 24 every hour except midnight's is kept.
func HourWindow(tbl *table.Table, startHour, endHour int) *table.Table {
	return tbl.Filter(func(ts time.Time) bool {
		h := ts.Hour()
		return h > startHour && h <= endHour
	})
}

// Mean returns the NaN-skipping per-channel mean of tbl.
func Mean(tbl *table.Table) map[models.Key]float64 {
	return tbl.Mean()
}

// Day returns midnight of t's calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaySlice keeps rows from date+cutoffHour through the following midnight,
// both ends inclusive.
func DaySlice(tbl *table.Table, date time.Time, cutoffHour int) *table.Table {
	day := Day(date)
	from := day.Add(time.Duration(cutoffHour) * time.Hour)
	to := day.AddDate(0, 0, 1)
	return tbl.Between(from, to)
}

// DateRange keeps every row on the calendar days start through end. A
// reversed range yields an empty table.
func DateRange(tbl *table.Table, start, end time.Time) *table.Table {
	from := Day(start)
	to := Day(end).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return tbl.Between(from, to)
}

// SelectKeys narrows tbl to keys, in order. No keys yields no rows.
func SelectKeys(tbl *table.Table, keys []models.Key) *table.Table {
	return tbl.Select(keys)
}

// Stack reshapes a wide table into one cell per (time, channel) with a
// sample, row by row. label names each channel. Missing samples are dropped.
func Stack(tbl *table.Table, label func(models.Key) string) []models.HeatmapCell {
	keys := tbl.Keys()
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.String()
		if label != nil {
			labels[i] = label(k)
		}
	}

	cells := make([]models.HeatmapCell, 0, tbl.Len()*len(keys))
	for i := 0; i < tbl.Len(); i++ {
		ts := tbl.Time(i)
		tl := ts.Format(TimeLabelLayout)
		for col, v := range tbl.Row(i) {
			if math.IsNaN(v) {
				continue
			}
			cells = append(cells, models.HeatmapCell{
				Time:      ts,
				Light:     labels[col],
				Key:       keys[col],
				Level:     v,
				TimeLabel: tl,
			})
		}
	}
	return cells
}

// Days lists the calendar days covered by tbl, oldest first.
func Days(tbl *table.Table) []time.Time {
	first, ok := tbl.First()
	if !ok {
		return nil
	}
	last, _ := tbl.Last()
	var days []time.Time
	for d := Day(first); !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
