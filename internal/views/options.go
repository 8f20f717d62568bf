// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package views

import (
	"strings"

	"github.com/tomtom215/assemblylights/internal/models"
)

// Areas lists the area choices. Named areas come first in name-table order;
// areas that only appear in the brightness table follow, labelled by id.
func (s *Service) Areas() []models.SelectOption {
	seen := make(map[string]bool)
	out := make([]models.SelectOption, 0, len(s.snap.AreaNames))
	for _, an := range s.snap.AreaNames {
		if seen[an.ID] {
			continue
		}
		seen[an.ID] = true
		out = append(out, models.SelectOption{Value: an.ID, Label: an.Name})
	}
	for _, k := range s.channelKeys() {
		if seen[k.Area] {
			continue
		}
		seen[k.Area] = true
		out = append(out, models.SelectOption{Value: k.Area, Label: k.Area})
	}
	return out
}

// Channels lists the channel choices for the given areas, each matched by
// id or display name. No areas lists every channel.
func (s *Service) Channels(areas []string) []models.ChannelOption {
	want := make(map[string]bool, len(areas))
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if a != "" {
			want[a] = true
		}
	}

	keys := s.channelKeys()
	out := make([]models.ChannelOption, 0, len(keys))
	for _, k := range keys {
		areaName := s.areaNames[k.Area]
		if len(want) > 0 && !want[k.Area] && (areaName == "" || !want[areaName]) {
			continue
		}
		name := s.channelNames[k]
		if name == "" {
			name = k.Channel
		}
		out = append(out, models.ChannelOption{
			Key:      k,
			Label:    s.Label(k),
			Area:     k.Area,
			AreaName: areaName,
			Name:     name,
		})
	}
	return out
}

// channelKeys returns the named channels followed by any other brightness
// table column, without duplicates.
func (s *Service) channelKeys() []models.Key {
	seen := make(map[models.Key]bool)
	var keys []models.Key
	for _, cn := range s.snap.ChannelNames {
		if seen[cn.Key] {
			continue
		}
		seen[cn.Key] = true
		keys = append(keys, cn.Key)
	}
	for _, k := range s.snap.Raw.Keys() {
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
