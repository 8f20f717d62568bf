// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package models

// FixturePosition is one row of the position table. A row describes a
// fixture group: every fixture in the group shares Area, Channel, Name and
// Size, and XList/YList carry one comma-separated coordinate per fixture.
type FixturePosition struct {
	Area    string
	Channel string
	Name    string
	Size    float64
	XList   string
	YList   string
}

// Key returns the brightness table key for the group.
func (p FixturePosition) Key() Key {
	return NewKey(p.Area, p.Channel)
}

// HasCoordinates reports whether the group has any renderable instances.
func (p FixturePosition) HasCoordinates() bool {
	return p.XList != "" && p.YList != ""
}

// Fixture is one physical light with render coordinates.
//
// X and Y are in the floor-plan pixel plane with a bottom-left origin.
// Level is a brightness percentage in [0, 100]; HasData is false when the
// brightness table had no sample for the fixture at the selected time.
type Fixture struct {
	ID          int     `json:"id"`
	Area        string  `json:"area"`
	Channel     string  `json:"channel"`
	Name        string  `json:"name"`
	DisplaySize float64 `json:"size"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Level       float64 `json:"level"`
	Alpha       float64 `json:"alpha"`
	Color       string  `json:"color"`
	HasData     bool    `json:"has_data"`
}

// Key returns the brightness table key for the fixture.
func (f Fixture) Key() Key {
	return Key{Area: f.Area, Channel: f.Channel}
}

// ChannelName maps a channel to its display name.
type ChannelName struct {
	Key  Key
	Name string
}

// AreaName maps an area identifier to its display name.
type AreaName struct {
	ID   string
	Name string
}
