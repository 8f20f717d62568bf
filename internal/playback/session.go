// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
	"github.com/tomtom215/assemblylights/internal/models"
)

// FramePublisher receives every frame a session produces.
type FramePublisher interface {
	PublishFrame(frame models.Frame)
}

// Session owns one viewer's playback state and its auto-advance timer.
// Client calls are serialized under ctl, which also guards the timer and the
// closed flag. State swaps happen under mu; readers always see a whole State.
// ctl is never taken by the timer loop, so Stop may wait for it under ctl.
type Session struct {
	id       string
	fixtures []models.Fixture
	color    string
	pub      FramePublisher
	now      func() time.Time

	// runCtx parents the ticker loop; it outlives any single HTTP request.
	runCtx context.Context
	ticker *Ticker

	ctl    sync.Mutex
	closed bool

	mu         sync.Mutex
	state      State
	lastActive time.Time
}

func newSession(runCtx context.Context, id string, state State, placed []models.Fixture, cfg Config, pub FramePublisher) *Session {
	s := &Session{
		id:       id,
		fixtures: placed,
		color:    cfg.FixtureColor,
		pub:      pub,
		now:      cfg.now,
		runCtx:   runCtx,
		state:    state,
	}
	s.lastActive = s.now()
	s.ticker = NewTicker(cfg.RefreshInterval, s.tick)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Playing reports whether auto-advance is on.
func (s *Session) Playing() bool {
	return s.ticker.Running()
}

// LastActive returns when a client last touched the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Frame renders the current state.
func (s *Session) Frame() (models.Frame, error) {
	s.mu.Lock()
	st := s.state
	s.lastActive = s.now()
	s.mu.Unlock()
	return s.render(st)
}

// SetDate pauses playback, selects date and rewinds to offset zero.
func (s *Session) SetDate(ctx context.Context, date time.Time) (models.Frame, error) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.closed {
		return models.Frame{}, s.errClosed()
	}
	if s.ticker.Stop() {
		metrics.PlaybackPlaying.Dec()
	}
	st := s.apply(func(cur State) (State, error) {
		return cur.WithDate(date), nil
	}, true)
	logging.Ctx(logging.ContextWithSessionID(ctx, s.id)).Debug().
		Str("date", date.Format(DateLayout)).
		Int("rows", st.Rows()).
		Msg("Playback date changed")
	return s.publish(st)
}

// Seek scrubs to offset seconds.
func (s *Session) Seek(offset int64) (models.Frame, error) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.closed {
		return models.Frame{}, s.errClosed()
	}
	var seekErr error
	st := s.apply(func(cur State) (State, error) {
		next, err := cur.Seek(offset)
		seekErr = err
		return next, err
	}, true)
	if seekErr != nil {
		return models.Frame{}, seekErr
	}
	return s.publish(st)
}

// Step advances one period, wrapping at the end of the day.
func (s *Session) Step() (models.Frame, error) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.closed {
		return models.Frame{}, s.errClosed()
	}
	st := s.apply(func(cur State) (State, error) {
		next, wrapped := cur.Advance()
		if wrapped {
			metrics.PlaybackWraps.Inc()
		}
		return next, nil
	}, true)
	return s.publish(st)
}

// Play starts auto-advance. It returns false if already playing, and
// ErrSessionNotFound once the session is closed.
func (s *Session) Play() (bool, error) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.closed {
		return false, s.errClosed()
	}
	started := s.ticker.Start(s.runCtx)
	if started {
		metrics.PlaybackPlaying.Inc()
		s.touch()
		s.publishCurrent()
	}
	return started, nil
}

// Pause stops auto-advance. It returns false if already paused.
func (s *Session) Pause() bool {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	stopped := s.ticker.Stop()
	if stopped {
		metrics.PlaybackPlaying.Dec()
		s.touch()
		s.publishCurrent()
	}
	return stopped
}

// Close stops the timer. Later transitions fail with ErrSessionNotFound.
func (s *Session) Close() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.closed = true
	if s.ticker.Stop() {
		metrics.PlaybackPlaying.Dec()
	}
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	return s.closed
}

func (s *Session) errClosed() error {
	return fmt.Errorf("%w: %s", ErrSessionNotFound, s.id)
}

func (s *Session) tick(ctx context.Context) {
	st := s.apply(func(cur State) (State, error) {
		next, wrapped := cur.Advance()
		if wrapped {
			metrics.PlaybackWraps.Inc()
		}
		return next, nil
	}, false)
	metrics.PlaybackTicks.Inc()

	if _, err := s.publish(st); err != nil {
		logging.Ctx(logging.ContextWithSessionID(ctx, s.id)).Warn().Err(err).Msg("Playback tick failed")
	}
}

func (s *Session) publishCurrent() {
	if _, err := s.publish(s.State()); err != nil {
		logging.Warn().Err(err).Str("session_id", s.id).Msg("Playback frame publish failed")
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// apply swaps in the result of fn. On error the state is left unchanged.
// Client calls pass touch; timer ticks do not.
func (s *Session) apply(fn func(State) (State, error), touch bool) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err == nil {
		s.state = next
	}
	if touch {
		s.lastActive = s.now()
	}
	return s.state
}

func (s *Session) render(st State) (models.Frame, error) {
	start := time.Now()
	frame, err := st.Frame(s.fixtures, s.color)
	if err != nil {
		return models.Frame{}, err
	}
	frame.SessionID = s.id
	frame.Playing = s.ticker.Running()
	metrics.RecordViewBuild("frame", len(frame.Fixtures), time.Since(start))
	return frame, nil
}

func (s *Session) publish(st State) (models.Frame, error) {
	frame, err := s.render(st)
	if err != nil {
		return models.Frame{}, err
	}
	if s.pub != nil {
		s.pub.PublishFrame(frame)
	}
	return frame, nil
}
