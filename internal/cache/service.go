// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package cache

import (
	"context"
	"time"
)

// JanitorService runs periodic expiry for one cache under a supervisor.
type JanitorService struct {
	cache    *Cache
	interval time.Duration
}

// NewJanitorService returns a service sweeping c every interval.
func NewJanitorService(c *Cache, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JanitorService{cache: c, interval: interval}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	return s.cache.Run(ctx, s.interval)
}

// String implements fmt.Stringer for suture logging.
func (s *JanitorService) String() string {
	return "cache-janitor-" + s.cache.Name()
}
