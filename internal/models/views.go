// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package models

import "time"

// Canvas carries the static render hints shared by the floor-plan views.
type Canvas struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	DisplayScale    float64 `json:"display_scale"`
	Background      string  `json:"background"`
	OffColor        string  `json:"off_color"`
	ImageURL        string  `json:"image_url"`
	ImageProxyPath  string  `json:"image_proxy_path,omitempty"`
	LabelX          float64 `json:"label_x"`
	PlaybackLabelX  float64 `json:"playback_label_x"`
	LabelY          float64 `json:"label_y"`
	LabelColor      string  `json:"label_color"`
	LabelFontSizePt int     `json:"label_font_size_pt"`
}

// MeanView is the static floor-plan overlay of mean brightness per fixture.
type MeanView struct {
	Label     string    `json:"label"`
	StartHour int       `json:"start_hour"`
	EndHour   int       `json:"end_hour"`
	Rows      int       `json:"rows"`
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
	Palette   []string  `json:"palette"`
	Fixtures  []Fixture `json:"fixtures"`
}

// Frame is one playback step: the fixture levels at a single timestamp.
type Frame struct {
	SessionID string    `json:"session_id"`
	Date      string    `json:"date"`
	Time      time.Time `json:"time"`
	Label     string    `json:"label"`
	Offset    int64     `json:"offset_seconds"`
	MaxOffset int64     `json:"max_offset_seconds"`
	Step      int64     `json:"step_seconds"`
	Playing   bool      `json:"playing"`
	Rows      int       `json:"rows"`
	Fixtures  []Fixture `json:"fixtures"`
}

// HeatmapCell is one (time, channel) pair of the long-form timeline table.
type HeatmapCell struct {
	Time      time.Time `json:"time"`
	Light     string    `json:"light"`
	Key       Key       `json:"key"`
	Level     float64   `json:"level"`
	Color     string    `json:"color"`
	TimeLabel string    `json:"time_label"`
}

// HeatmapView is the long-form timeline heatmap for a date range.
type HeatmapView struct {
	Title       string        `json:"title"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	RectWidthMs int64         `json:"rect_width_ms"`
	Factors     []string      `json:"factors"`
	Palette     []string      `json:"palette"`
	Low         float64       `json:"low"`
	High        float64       `json:"high"`
	Cells       []HeatmapCell `json:"cells"`
}

// SelectOption is one entry of a multi-select list.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChannelOption is a channel choice for the heatmap channel selector.
type ChannelOption struct {
	Key      Key    `json:"key"`
	Label    string `json:"label"`
	Area     string `json:"area"`
	AreaName string `json:"area_name"`
	Name     string `json:"name"`
}
