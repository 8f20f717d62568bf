// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package models defines the data structures shared by the loader, the view
// builders, playback and the API: channel keys, fixtures and rendered views.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator joins the area and channel identifiers in brightness table headers.
const KeySeparator = "."

// Key identifies one lighting channel within an area.
// It is the join key between the position table and the brightness table.
type Key struct {
	Area    string `json:"area"`
	Channel string `json:"channel"`
}

// NewKey builds a Key, trimming surrounding whitespace from both parts.
func NewKey(area, channel string) Key {
	return Key{Area: strings.TrimSpace(area), Channel: strings.TrimSpace(channel)}
}

// ParseKey parses a "<area>.<channel>" header. The split happens on the
// first separator so channel identifiers may themselves contain dots.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	area, channel, ok := strings.Cut(s, KeySeparator)
	if !ok || area == "" || channel == "" {
		return Key{}, fmt.Errorf("invalid channel key %q: want <area>%s<channel>", s, KeySeparator)
	}
	return NewKey(area, channel), nil
}

// String renders the key in brightness table header form.
func (k Key) String() string {
	return k.Area + KeySeparator + k.Channel
}

// AreaNumber returns the numeric value of the area identifier.
func (k Key) AreaNumber() (int, bool) {
	n, err := strconv.Atoi(k.Area)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalText lets Key be used as a JSON object key.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "<area>.<channel>" form.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
