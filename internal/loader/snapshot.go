// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package loader reads the brightness, fixture position and name tables from
// disk and bundles them into an immutable Snapshot.
//
// Any missing or malformed file yields an error matching ErrIO; a fixture
// whose channel has no brightness column yields a *fixtures.MissingKeyError.
// Both abort startup.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

// Files names the input tables. ChannelNames and AreaNames are optional.
type Files struct {
	Brightness   string
	Positions    string
	ChannelNames string
	AreaNames    string
}

// Options controls how the brightness table is resampled.
type Options struct {
	// Location interprets timestamps without a zone. Defaults to time.Local.
	Location *time.Location

	// PointPeriod is the grid for the floor-plan views.
	PointPeriod time.Duration

	// HeatmapPeriod is the grid for the timeline heatmap.
	HeatmapPeriod time.Duration

	Policy table.Policy

	// SkipKeyCheck disables the startup check that every positioned
	// fixture has a brightness column.
	SkipKeyCheck bool
}

// DefaultOptions returns five-minute points and hourly heatmap cells with
// exact-match resampling.
func DefaultOptions() Options {
	return Options{
		Location:      time.Local,
		PointPeriod:   5 * time.Minute,
		HeatmapPeriod: time.Hour,
		Policy:        table.PolicyExact,
	}
}

// Snapshot is the read-only reference data shared by every view.
type Snapshot struct {
	// Raw is the table as read, before resampling.
	Raw *table.Table

	// Points is Raw resampled to Options.PointPeriod.
	Points *table.Table

	// Hourly is Raw resampled to Options.HeatmapPeriod.
	Hourly *table.Table

	Positions    []models.FixturePosition
	ChannelNames []models.ChannelName
	AreaNames    []models.AreaName

	LoadedAt time.Time
}

// LoadSnapshot reads every input file and derives the resampled tables.
func LoadSnapshot(ctx context.Context, files Files, opts Options) (*Snapshot, error) {
	start := time.Now()
	if opts.PointPeriod <= 0 || opts.HeatmapPeriod <= 0 {
		return nil, fmt.Errorf("resample periods must be positive (points %s, heatmap %s)", opts.PointPeriod, opts.HeatmapPeriod)
	}

	raw, err := readFile(files.Brightness, func(r io.Reader) (*table.Table, error) {
		return ReadBrightness(r, opts.Location)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions, err := readFile(files.Positions, ReadPositions)
	if err != nil {
		return nil, err
	}

	var channelNames []models.ChannelName
	if files.ChannelNames != "" {
		if channelNames, err = readFile(files.ChannelNames, ReadChannelNames); err != nil {
			return nil, err
		}
	}
	var areaNames []models.AreaName
	if files.AreaNames != "" {
		if areaNames, err = readFile(files.AreaNames, ReadAreaNames); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !opts.SkipKeyCheck {
		if err := fixtures.Verify(positions, raw); err != nil {
			return nil, err
		}
	}

	points, err := raw.Resample(opts.PointPeriod, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("resample to %s: %w", opts.PointPeriod, err)
	}
	hourly, err := raw.Resample(opts.HeatmapPeriod, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("resample to %s: %w", opts.HeatmapPeriod, err)
	}

	snap := &Snapshot{
		Raw:          raw,
		Points:       points,
		Hourly:       hourly,
		Positions:    positions,
		ChannelNames: channelNames,
		AreaNames:    areaNames,
		LoadedAt:     time.Now(),
	}

	elapsed := time.Since(start)
	metrics.SnapshotLoadDuration.Observe(elapsed.Seconds())
	metrics.TableRows.WithLabelValues("raw").Set(float64(raw.Len()))
	metrics.TableRows.WithLabelValues("points").Set(float64(points.Len()))
	metrics.TableRows.WithLabelValues("hourly").Set(float64(hourly.Len()))
	metrics.TableChannels.Set(float64(raw.Width()))

	logging.Info().
		Str("brightness", files.Brightness).
		Int("rows", raw.Len()).
		Int("channels", raw.Width()).
		Int("positions", len(positions)).
		Int("channel_names", len(channelNames)).
		Int("area_names", len(areaNames)).
		Str("policy", string(opts.Policy)).
		Dur("elapsed", elapsed).
		Msg("Reference tables loaded")

	return snap, nil
}

// readFile opens path and parses it with parse, attaching the path to any error.
func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if path == "" {
		return zero, &FileError{Err: fmt.Errorf("no path configured")}
	}
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return zero, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fileError(path, 0, err)
	}
	return v, nil
}

// ChannelNameIndex maps channel keys to display names.
func (s *Snapshot) ChannelNameIndex() map[models.Key]string {
	m := make(map[models.Key]string, len(s.ChannelNames))
	for _, cn := range s.ChannelNames {
		m[cn.Key] = cn.Name
	}
	return m
}

// AreaNameIndex maps area ids to display names.
func (s *Snapshot) AreaNameIndex() map[string]string {
	m := make(map[string]string, len(s.AreaNames))
	for _, an := range s.AreaNames {
		m[an.ID] = an.Name
	}
	return m
}

// ChannelLabel returns "<area name> - <channel name>", falling back to the
// raw ids when a name is unknown.
func ChannelLabel(k models.Key, areaNames map[string]string, channelNames map[models.Key]string) string {
	area, ok := areaNames[k.Area]
	if !ok || area == "" {
		area = k.Area
	}
	channel, ok := channelNames[k]
	if !ok || channel == "" {
		channel = k.Channel
	}
	return area + " - " + channel
}
