// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/assemblylights/internal/models"
)

// ReadChannelNames parses the channel name CSV: an index column followed by
// Area and Name. The index is either a full "<area>.<channel>" key or the
// channel number within Area.
func ReadChannelNames(r io.Reader) ([]models.ChannelName, error) {
	reader := newTableReader(r, ',')

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &FileError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	cols := headerMap(headers)
	for _, req := range []string{"area", "name"} {
		if _, ok := cols[req]; !ok {
			return nil, &FileError{Line: 1, Err: fmt.Errorf("missing required column %q", req)}
		}
	}

	var out []models.ChannelName
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

		index := strings.TrimSpace(record[0])
		key, err := models.ParseKey(index)
		if err != nil || key.Area != normalizeID(get("area")) {
			key = models.NewKey(normalizeID(get("area")), normalizeID(index))
		}
		if key.Area == "" || key.Channel == "" {
			return nil, &FileError{Line: line, Err: errors.New("channel id and area are required")}
		}
		out = append(out, models.ChannelName{Key: key, Name: get("name")})
	}
	return out, nil
}

// ReadAreaNames parses the area name CSV: an index column followed by Name.
func ReadAreaNames(r io.Reader) ([]models.AreaName, error) {
	reader := newTableReader(r, ',')

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &FileError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	cols := headerMap(headers)
	if _, ok := cols["name"]; !ok {
		return nil, &FileError{Line: 1, Err: errors.New(`missing required column "name"`)}
	}

	var out []models.AreaName
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
		id := normalizeID(record[0])
		if id == "" {
			return nil, &FileError{Line: line, Err: errors.New("area id is required")}
		}
		out = append(out, models.AreaName{ID: id, Name: fieldGetter(record, cols)("name")})
	}
	return out, nil
}
