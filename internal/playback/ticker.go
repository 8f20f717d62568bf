// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package playback

import (
	"context"
	"sync"
	"time"
)

// Ticker runs fn every interval until stopped. At most one loop runs at a
// time. fn must not call Stop.
type Ticker struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker returns a stopped ticker.
func NewTicker(interval time.Duration, fn func(ctx context.Context)) *Ticker {
	return &Ticker{interval: interval, fn: fn}
}

// Start launches the loop. It returns false if the loop is already running.
// The loop also ends when parent is cancelled.
func (t *Ticker) Start(parent context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		select {
		case <-t.done:
			// previous loop ended with its parent context
		default:
			return false
		}
	}

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)
		tick := time.NewTicker(t.interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if ctx.Err() != nil {
					return
				}
				t.fn(ctx)
			}
		}
	}()
	return true
}

// Stop cancels the loop and waits for it to exit. It returns false when
// nothing was running; calling it again is a no-op.
func (t *Ticker) Stop() bool {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}
