// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newClockedCache(ttl time.Duration, maxEntries int) (*Cache, *time.Time) {
	now := time.Date(2016, 3, 1, 6, 0, 0, 0, time.UTC)
	c := New("test", ttl, maxEntries)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheBasicOperations(t *testing.T) {
	c := New("test", time.Minute, 0)

	c.Set("mean:0-24", "view")
	value, ok := c.Get("mean:0-24")
	if !ok || value != "view" {
		t.Errorf("Get() = %v, %v; want view, true", value, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get() of missing key reported true")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}
}

func TestCacheExpiration(t *testing.T) {
	c, now := newClockedCache(time.Minute, 0)

	c.Set("k", 1)
	*now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}
	*now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry still present after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", c.Len())
	}
}

func TestCacheMaxEntries(t *testing.T) {
	c, now := newClockedCache(time.Minute, 2)

	c.Set("a", 1)
	*now = now.Add(time.Second)
	c.Set("b", 2)
	*now = now.Add(time.Second)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry was not evicted")
	}
	c.Set("b", 20)
	if c.Len() != 2 {
		t.Errorf("overwriting should not evict; Len() = %d", c.Len())
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New("test", time.Minute, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestCacheGetOrCompute(t *testing.T) {
	c := New("test", time.Minute, 0)
	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v1, _ := c.GetOrCompute("k", compute)
	v2, _ := c.GetOrCompute("k", compute)
	if v1 != 1 || v2 != 1 || calls != 1 {
		t.Errorf("GetOrCompute() = %v, %v with %d calls", v1, v2, calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCompute("bad", func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("error result was cached")
	}
}

func TestCacheCleanup(t *testing.T) {
	c, now := newClockedCache(time.Minute, 0)
	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)

	*now = now.Add(2 * time.Minute)
	c.cleanup()

	if c.Len() != 1 {
		t.Errorf("Len() after cleanup = %d, want 1", c.Len())
	}
	if c.GetStats().LastCleanup != *now {
		t.Error("LastCleanup not updated")
	}
}

func TestJanitorService(t *testing.T) {
	c := New("test", time.Minute, 0)
	svc := NewJanitorService(c, time.Millisecond)
	if svc.String() != "cache-janitor-test" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestGenerateKey(t *testing.T) {
	k1 := GenerateKey("heatmap", map[string]interface{}{"start": "2016-03-01", "end": "2016-03-02"})
	k2 := GenerateKey("heatmap", map[string]interface{}{"end": "2016-03-02", "start": "2016-03-01"})
	k3 := GenerateKey("heatmap", map[string]interface{}{"start": "2016-03-01", "end": "2016-03-03"})
	if k1 != k2 {
		t.Error("GenerateKey() depends on map order")
	}
	if k1 == k3 {
		t.Error("GenerateKey() collided for different params")
	}
}
