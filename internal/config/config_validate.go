// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/assemblylights/internal/colormap"
	"github.com/tomtom215/assemblylights/internal/validation"
)

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateViews(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateData() error {
	if _, err := c.Data.Location(); err != nil {
		return err
	}
	if c.Data.HeatmapPeriod < c.Data.PointPeriod {
		return fmt.Errorf("data.heatmap_period (%s) must not be shorter than data.point_period (%s)",
			c.Data.HeatmapPeriod, c.Data.PointPeriod)
	}
	if c.Data.PointPeriod%time.Second != 0 {
		return fmt.Errorf("data.point_period must be a whole number of seconds, got %s", c.Data.PointPeriod)
	}
	return nil
}

func (c *Config) validateViews() error {
	if _, err := colormap.Palette(c.Views.MeanPalette); err != nil {
		return fmt.Errorf("views.mean_palette: %w", err)
	}
	if _, err := colormap.Palette(c.Views.HeatmapPalette); err != nil {
		return fmt.Errorf("views.heatmap_palette: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Server.Environment == "production" && c.hasWildcardCORS() {
		return fmt.Errorf("security.cors_origins must not contain * in production")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
