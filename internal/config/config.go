// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package config loads the service configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values for the Assembly Rooms first floor
//  2. Config file: optional YAML (CONFIG_PATH, then config.yaml)
//  3. Environment variables: a fixed mapping, e.g. HTTP_PORT, BRIGHTNESS_PATH
//
// The loaded Config is validated before it is returned.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/floorplan"
	"github.com/tomtom215/assemblylights/internal/loader"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/playback"
	"github.com/tomtom215/assemblylights/internal/table"
	"github.com/tomtom215/assemblylights/internal/views"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Plan      PlanConfig      `koanf:"plan"`
	Views     ViewsConfig     `koanf:"views"`
	Playback  PlaybackConfig  `koanf:"playback"`
	Floorplan FloorplanConfig `koanf:"floorplan"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development production"`
}

// DataConfig locates the input tables and controls resampling.
type DataConfig struct {
	BrightnessPath   string        `koanf:"brightness_path" validate:"required"`
	PositionsPath    string        `koanf:"positions_path" validate:"required"`
	ChannelNamesPath string        `koanf:"channel_names_path"`
	AreaNamesPath    string        `koanf:"area_names_path"`
	Timezone         string        `koanf:"timezone" validate:"required"`
	PointPeriod      time.Duration `koanf:"point_period" validate:"gt=0"`
	HeatmapPeriod    time.Duration `koanf:"heatmap_period" validate:"gt=0"`
	ResamplePolicy   string        `koanf:"resample_policy" validate:"oneof=exact ffill"`
	SkipKeyCheck     bool          `koanf:"skip_key_check"`
}

// PlanConfig maps position-table coordinates onto the floor-plan image.
type PlanConfig struct {
	Width          float64 `koanf:"width" validate:"gt=0"`
	Height         float64 `koanf:"height" validate:"gt=0"`
	Scaler         float64 `koanf:"scaler" validate:"gt=0"`
	ShiftX         float64 `koanf:"shift_x"`
	ShiftY         float64 `koanf:"shift_y"`
	SizeMultiplier float64 `koanf:"size_multiplier" validate:"gt=0"`
	DisplayScale   float64 `koanf:"display_scale" validate:"gt=0"`
	Background     string  `koanf:"background" validate:"hexcolor6"`
	OffColor       string  `koanf:"off_color" validate:"hexcolor6"`
	ImageURL       string  `koanf:"image_url" validate:"omitempty,url"`
	LabelColor     string  `koanf:"label_color" validate:"hexcolor6"`
	LabelFontSize  int     `koanf:"label_font_size" validate:"gt=0"`
}

// ViewsConfig holds mean and heatmap view settings.
type ViewsConfig struct {
	MinArea           int           `koanf:"min_area" validate:"gte=0"`
	MeanPalette       string        `koanf:"mean_palette" validate:"required"`
	HeatmapPalette    string        `koanf:"heatmap_palette" validate:"required"`
	NaNColor          string        `koanf:"nan_color" validate:"hexcolor6"`
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	CacheMaxEntries   int           `koanf:"cache_max_entries" validate:"gte=0"`
	CacheSweep        time.Duration `koanf:"cache_sweep" validate:"gt=0"`
	TimelineWidth     int           `koanf:"timeline_width" validate:"gte=200"`
	TimelineHeight    int           `koanf:"timeline_height" validate:"gte=150"`
	TimelineMaxSeries int           `koanf:"timeline_max_series" validate:"gte=1"`
}

// PlaybackConfig holds the day-playback settings.
type PlaybackConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=10ms"`
	CutoffHour      int           `koanf:"cutoff_hour" validate:"gte=0,lte=23"`
	FixtureColor    string        `koanf:"fixture_color" validate:"hexcolor6"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ReapInterval    time.Duration `koanf:"reap_interval" validate:"gt=0"`
	MaxSessions     int           `koanf:"max_sessions" validate:"gte=1"`
}

// FloorplanConfig controls the floor-plan image proxy.
type FloorplanConfig struct {
	Enabled           bool          `koanf:"enabled"`
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxBytes          int64         `koanf:"max_bytes" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"gte=1"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	AllowedWSOrigins  []string      `koanf:"allowed_ws_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic off disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location resolves the configured timezone.
func (d DataConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// Files returns the loader input paths.
func (d DataConfig) Files() loader.Files {
	return loader.Files{
		Brightness:   d.BrightnessPath,
		Positions:    d.PositionsPath,
		ChannelNames: d.ChannelNamesPath,
		AreaNames:    d.AreaNamesPath,
	}
}

// LoaderOptions converts the data settings for loader.LoadSnapshot.
func (d DataConfig) LoaderOptions() (loader.Options, error) {
	loc, err := d.Location()
	if err != nil {
		return loader.Options{}, err
	}
	policy, err := table.ParsePolicy(d.ResamplePolicy)
	if err != nil {
		return loader.Options{}, err
	}
	return loader.Options{
		Location:      loc,
		PointPeriod:   d.PointPeriod,
		HeatmapPeriod: d.HeatmapPeriod,
		Policy:        policy,
		SkipKeyCheck:  d.SkipKeyCheck,
	}, nil
}

// Layout returns the coordinate transform for fixtures.Build.
func (p PlanConfig) Layout() fixtures.Layout {
	l := fixtures.DefaultLayout()
	l.Scaler = p.Scaler
	l.PlotHeight = p.Height
	l.ShiftX = p.ShiftX
	l.ShiftY = p.ShiftY
	l.SizeMultiplier = p.SizeMultiplier
	return l
}

// ViewsConfig combines the plan and view settings for views.New.
func (c *Config) ViewsConfig(loc *time.Location, imageProxyPath string) views.Config {
	vc := views.DefaultConfig()
	vc.MinArea = c.Views.MinArea
	vc.MeanPalette = c.Views.MeanPalette
	vc.HeatmapPalette = c.Views.HeatmapPalette
	vc.NaNColor = c.Views.NaNColor
	vc.Location = loc
	vc.CacheTTL = c.Views.CacheTTL
	vc.CacheEntries = c.Views.CacheMaxEntries
	vc.TimelineWidth = c.Views.TimelineWidth
	vc.TimelineHeight = c.Views.TimelineHeight
	vc.TimelineMaxSeries = c.Views.TimelineMaxSeries

	vc.Canvas = models.Canvas{
		Width:           c.Plan.Width,
		Height:          c.Plan.Height,
		DisplayScale:    c.Plan.DisplayScale,
		Background:      c.Plan.Background,
		OffColor:        c.Plan.OffColor,
		ImageURL:        c.Plan.ImageURL,
		ImageProxyPath:  imageProxyPath,
		LabelX:          vc.Canvas.LabelX,
		PlaybackLabelX:  vc.Canvas.PlaybackLabelX,
		LabelY:          vc.Canvas.LabelY,
		LabelColor:      c.Plan.LabelColor,
		LabelFontSizePt: c.Plan.LabelFontSize,
	}
	return vc
}

// PlaybackConfig converts the playback settings for playback.NewManager.
func (c *Config) PlaybackConfig() playback.Config {
	pc := playback.DefaultConfig()
	pc.RefreshInterval = c.Playback.RefreshInterval
	pc.CutoffHour = c.Playback.CutoffHour
	pc.FixtureColor = c.Playback.FixtureColor
	pc.IdleTimeout = c.Playback.IdleTimeout
	pc.ReapInterval = c.Playback.ReapInterval
	pc.MaxSessions = c.Playback.MaxSessions
	return pc
}

// FloorplanConfig converts the proxy settings for floorplan.New. The
// upstream is the plan image URL.
func (c *Config) FloorplanConfig() floorplan.Config {
	return floorplan.Config{
		URL:               c.Plan.ImageURL,
		CacheTTL:          c.Floorplan.CacheTTL,
		Timeout:           c.Floorplan.Timeout,
		MaxBytes:          c.Floorplan.MaxBytes,
		RequestsPerSecond: c.Floorplan.RequestsPerSecond,
		Burst:             c.Floorplan.Burst,
	}
}

// FloorplanEnabled reports whether the image proxy should run.
func (c *Config) FloorplanEnabled() bool {
	return c.Floorplan.Enabled && c.Plan.ImageURL != ""
}

// WebSocketOrigins returns the origins allowed to open playback streams,
// falling back to the CORS origins.
func (c *Config) WebSocketOrigins() []string {
	if len(c.Security.AllowedWSOrigins) > 0 {
		return c.Security.AllowedWSOrigins
	}
	return c.Security.CORSOrigins
}

// LoggingConfig converts the logging settings for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}
