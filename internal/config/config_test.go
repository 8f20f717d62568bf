// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package config

import (
	"testing"
	"time"

	"github.com/tomtom215/assemblylights/internal/table"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing brightness path", mutate: func(c *Config) { c.Data.BrightnessPath = "" }, wantErr: true},
		{name: "unknown policy", mutate: func(c *Config) { c.Data.ResamplePolicy = "linear" }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Data.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "heatmap finer than points", mutate: func(c *Config) { c.Data.HeatmapPeriod = time.Minute }, wantErr: true},
		{name: "fractional period", mutate: func(c *Config) {
			c.Data.PointPeriod = 1500 * time.Millisecond
			c.Data.HeatmapPeriod = time.Hour
		}, wantErr: true},
		{name: "unknown palette", mutate: func(c *Config) { c.Views.MeanPalette = "viridis" }, wantErr: true},
		{name: "bad fixture color", mutate: func(c *Config) { c.Playback.FixtureColor = "yellow" }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "wildcard cors in production", mutate: func(c *Config) { c.Server.Environment = "production" }, wantErr: true},
		{name: "explicit cors in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://lights.example.org"}
		}},
		{name: "logging off", mutate: func(c *Config) { c.Logging.Level = "off" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Data.Timezone = "UTC"
	cfg.Data.ResamplePolicy = "ffill"

	opts, err := cfg.Data.LoaderOptions()
	if err != nil {
		t.Fatalf("LoaderOptions() error = %v", err)
	}
	if opts.Policy != table.PolicyForwardFill || opts.Location != time.UTC || opts.PointPeriod != 5*time.Minute {
		t.Errorf("LoaderOptions() = %+v", opts)
	}

	if got := cfg.Data.Files().Brightness; got != cfg.Data.BrightnessPath {
		t.Errorf("Files().Brightness = %q", got)
	}

	layout := cfg.Plan.Layout()
	if layout.PlotHeight != 3519 || layout.SizeMultiplier != 8 {
		t.Errorf("Layout() = %+v", layout)
	}

	vc := cfg.ViewsConfig(time.UTC, "/api/v1/floorplan")
	if vc.Canvas.ImageProxyPath != "/api/v1/floorplan" || vc.Canvas.LabelX != 100 || vc.Canvas.PlaybackLabelX != 50 {
		t.Errorf("ViewsConfig().Canvas = %+v", vc.Canvas)
	}

	pc := cfg.PlaybackConfig()
	if pc.RefreshInterval != 100*time.Millisecond || pc.MaxSessions != 256 {
		t.Errorf("PlaybackConfig() = %+v", pc)
	}

	if cfg.Server.Addr() != "0.0.0.0:8050" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}

	fc := cfg.FloorplanConfig()
	if fc.URL != defaultFloorplanURL || fc.CacheTTL != time.Hour || fc.Burst != 2 {
		t.Errorf("FloorplanConfig() = %+v", fc)
	}
	if !cfg.FloorplanEnabled() {
		t.Error("floor-plan proxy should be enabled by default")
	}
	cfg.Plan.ImageURL = ""
	if cfg.FloorplanEnabled() {
		t.Error("floor-plan proxy needs an image URL")
	}
}

func TestWebSocketOrigins(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.CORSOrigins = []string{"http://a.example"}
	if got := cfg.WebSocketOrigins(); len(got) != 1 || got[0] != "http://a.example" {
		t.Errorf("fallback origins = %v", got)
	}
	cfg.Security.AllowedWSOrigins = []string{"http://b.example"}
	if got := cfg.WebSocketOrigins(); len(got) != 1 || got[0] != "http://b.example" {
		t.Errorf("explicit origins = %v", got)
	}
}
