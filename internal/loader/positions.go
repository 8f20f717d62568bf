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
	"strconv"
	"strings"

	"github.com/tomtom215/assemblylights/internal/models"
)

// positionColumns are required in the fixture position table header.
var positionColumns = []string{"area", "channel", "name", "size", "x", "y"}

// ReadPositions parses the tab-delimited fixture position table. Groups with
// an empty X list are kept; the fixture builder skips them.
func ReadPositions(r io.Reader) ([]models.FixturePosition, error) {
	reader := newTableReader(r, '\t')

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FileError{Line: 1, Err: errors.New("empty position table")}
		}
		return nil, &FileError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	cols := headerMap(headers)
	for _, req := range positionColumns {
		if _, ok := cols[req]; !ok {
			return nil, &FileError{Line: 1, Err: fmt.Errorf("missing required column %q", req)}
		}
	}

	var out []models.FixturePosition
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FileError{Line: parseErrorLine(err), Err: err}
		}
		if blankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		get := fieldGetter(record, cols)
		pos := models.FixturePosition{
			Area:    normalizeID(get("area")),
			Channel: normalizeID(get("channel")),
			Name:    get("name"),
			XList:   get("x"),
			YList:   get("y"),
		}
		if pos.Area == "" || pos.Channel == "" {
			return nil, &FileError{Line: line, Err: errors.New("area and channel are required")}
		}
		if s := get("size"); s != "" {
			size, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &FileError{Line: line, Err: fmt.Errorf("invalid size %q", s)}
			}
			pos.Size = size
		} else if pos.HasCoordinates() {
			return nil, &FileError{Line: line, Err: fmt.Errorf("fixture %s has coordinates but no size", pos.Key())}
		}
		out = append(out, pos)
	}
	return out, nil
}

func newTableReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func headerMap(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, h := range headers {
		m[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	return m
}

func fieldGetter(record []string, cols map[string]int) func(string) string {
	return func(col string) string {
		if idx, ok := cols[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
}

// normalizeID turns spreadsheet-exported ids such as "10.0" into "10".
func normalizeID(s string) string {
	s = strings.TrimSpace(s)
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		if _, err := strconv.Atoi(whole); err == nil {
			return whole
		}
	}
	return s
}
