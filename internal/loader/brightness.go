// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

// timestampLayouts are tried in order. Slash dates are day-first.
var timestampLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp parses a brightness-table timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

type brightnessRow struct {
	ts     time.Time
	values []float64
	line   int
}

// ReadBrightness parses the brightness CSV. The first column holds the
// timestamp and every other header is an "<area>.<channel>" key. Blank lines
// are skipped, blank cells become NaN. Rows are sorted by time; a repeated
// timestamp is an error.
func ReadBrightness(r io.Reader, loc *time.Location) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FileError{Line: 1, Err: errors.New("empty brightness table")}
		}
		return nil, &FileError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	if len(header) < 2 {
		return nil, &FileError{Line: 1, Err: errors.New("brightness table needs a timestamp column and at least one channel")}
	}

	keys := make([]models.Key, len(header)-1)
	for i, h := range header[1:] {
		k, err := models.ParseKey(h)
		if err != nil {
			return nil, &FileError{Line: 1, Err: err}
		}
		keys[i] = k
	}

	var rows []brightnessRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FileError{Line: parseErrorLine(err), Err: err}
		}
		line, _ := reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}
		row, err := parseBrightnessRecord(record, len(keys), loc)
		if err != nil {
			return nil, &FileError{Line: line, Err: err}
		}
		row.line = line
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	times := make([]time.Time, len(rows))
	values := make([][]float64, len(rows))
	for i, row := range rows {
		if i > 0 && row.ts.Equal(rows[i-1].ts) {
			return nil, &FileError{Line: row.line, Err: fmt.Errorf("duplicate timestamp %s", row.ts.Format(time.RFC3339))}
		}
		times[i] = row.ts
		values[i] = row.values
	}

	tbl, err := table.New(times, keys, values, 0)
	if err != nil {
		return nil, &FileError{Err: err}
	}
	return tbl, nil
}

func parseBrightnessRecord(record []string, width int, loc *time.Location) (brightnessRow, error) {
	ts, err := ParseTimestamp(record[0], loc)
	if err != nil {
		return brightnessRow{}, err
	}
	if len(record)-1 > width {
		return brightnessRow{}, fmt.Errorf("%d cells for %d channels", len(record)-1, width)
	}

	values := make([]float64, width)
	for i := range values {
		cell := -1
		if i+1 < len(record) {
			cell = i + 1
		}
		if cell < 0 || strings.TrimSpace(record[cell]) == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[cell]), 64)
		if err != nil {
			return brightnessRow{}, fmt.Errorf("column %d: invalid level %q", cell+1, record[cell])
		}
		values[i] = v
	}
	return brightnessRow{ts: ts, values: values}, nil
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}
