// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/assemblylights/internal/colormap"
	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/playback"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/assemblylights/config.yaml",
	"/etc/assemblylights/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultFloorplanURL is the inverted first-floor plan of the Assembly Rooms.
const defaultFloorplanURL = "http://groups.inf.ed.ac.uk/enhanced/wordpress/wp-content/uploads/FirstFloorPlan_trimmed_simple_noDoor_inv.png"

// defaultConfig returns the built-in defaults. These are applied first and
// then overridden by the config file and the environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8050,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Data: DataConfig{
			BrightnessPath:   "Tables/LIGHT_LEVELS.csv",
			PositionsPath:    "light positions/light_positions.txt",
			ChannelNamesPath: "Tables/channel_names.csv",
			AreaNamesPath:    "Tables/area_names.csv",
			Timezone:         "Local",
			PointPeriod:      5 * time.Minute,
			HeatmapPeriod:    time.Hour,
			ResamplePolicy:   "exact",
		},
		Plan: PlanConfig{
			Width:          fixtures.DefaultPlotWidth,
			Height:         fixtures.DefaultPlotHeight,
			Scaler:         fixtures.DefaultScaler,
			SizeMultiplier: fixtures.DefaultSizeMultiplier,
			DisplayScale:   6,
			Background:     "#3b4049",
			OffColor:       "#5a5d63",
			ImageURL:       defaultFloorplanURL,
			LabelColor:     "#e2e2e2",
			LabelFontSize:  40,
		},
		Views: ViewsConfig{
			MinArea:           10,
			MeanPalette:       colormap.PaletteGreenRed,
			HeatmapPalette:    colormap.PaletteAmber,
			NaNColor:          colormap.DefaultNaNColor,
			CacheTTL:          10 * time.Minute,
			CacheMaxEntries:   256,
			CacheSweep:        time.Minute,
			TimelineWidth:     1000,
			TimelineHeight:    600,
			TimelineMaxSeries: 12,
		},
		Playback: PlaybackConfig{
			RefreshInterval: 100 * time.Millisecond,
			CutoffHour:      6,
			FixtureColor:    playback.DefaultFixtureColor,
			IdleTimeout:     30 * time.Minute,
			ReapInterval:    time.Minute,
			MaxSessions:     256,
		},
		Floorplan: FloorplanConfig{
			Enabled:           true,
			CacheTTL:          time.Hour,
			Timeout:           10 * time.Second,
			MaxBytes:          20 << 20,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Security: SecurityConfig{
			RateLimitReqs:    100,
			RateLimitWindow:  time.Minute,
			CORSOrigins:      []string{"*"},
			AllowedWSOrigins: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers: defaults, the optional
// YAML file, then environment variables. The result is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// BRIGHTNESS_PATH -> data.brightness_path, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set by env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.allowed_ws_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Input tables
	"brightness_path":    "data.brightness_path",
	"positions_path":     "data.positions_path",
	"channel_names_path": "data.channel_names_path",
	"area_names_path":    "data.area_names_path",
	"data_timezone":      "data.timezone",
	"point_period":       "data.point_period",
	"heatmap_period":     "data.heatmap_period",
	"resample_policy":    "data.resample_policy",
	"skip_key_check":     "data.skip_key_check",

	// Floor plan geometry
	"plan_width":           "plan.width",
	"plan_height":          "plan.height",
	"plan_scaler":          "plan.scaler",
	"plan_shift_x":         "plan.shift_x",
	"plan_shift_y":         "plan.shift_y",
	"plan_size_multiplier": "plan.size_multiplier",
	"plan_display_scale":   "plan.display_scale",
	"plan_image_url":       "plan.image_url",

	// Views
	"mean_min_area":       "views.min_area",
	"mean_palette":        "views.mean_palette",
	"heatmap_palette":     "views.heatmap_palette",
	"view_cache_ttl":      "views.cache_ttl",
	"view_cache_entries":  "views.cache_max_entries",
	"timeline_max_series": "views.timeline_max_series",

	// Playback
	"playback_refresh_interval": "playback.refresh_interval",
	"playback_cutoff_hour":      "playback.cutoff_hour",
	"playback_fixture_color":    "playback.fixture_color",
	"playback_idle_timeout":     "playback.idle_timeout",
	"playback_max_sessions":     "playback.max_sessions",

	// Floor plan proxy
	"floorplan_enabled":   "floorplan.enabled",
	"floorplan_cache_ttl": "floorplan.cache_ttl",
	"floorplan_timeout":   "floorplan.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"ws_allowed_origins":  "security.allowed_ws_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its config path,
// or "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
