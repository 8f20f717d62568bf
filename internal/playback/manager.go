// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package playback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/metrics"
	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

var (
	// ErrSessionNotFound is returned for an unknown or closed session id.
	ErrSessionNotFound = errors.New("playback session not found")

	// ErrTooManySessions is returned when MaxSessions are already open.
	ErrTooManySessions = errors.New("too many playback sessions")

	// ErrManagerStopped is returned by Create after Shutdown.
	ErrManagerStopped = errors.New("playback manager stopped")
)

// DefaultFixtureColor fills every lit fixture during playback.
const DefaultFixtureColor = "#FFE900"

// Config controls session behaviour.
type Config struct {
	// RefreshInterval is the auto-advance period.
	RefreshInterval time.Duration

	// CutoffHour trims the early morning from each day's slice.
	CutoffHour int

	FixtureColor string

	// IdleTimeout closes sessions untouched for this long. Zero disables reaping.
	IdleTimeout time.Duration

	// ReapInterval is how often idle sessions are checked.
	ReapInterval time.Duration

	// MaxSessions caps open sessions. Zero means unlimited.
	MaxSessions int

	now func() time.Time
}

// DefaultConfig returns a 100ms refresh and a 06:00 morning cutoff.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 100 * time.Millisecond,
		CutoffHour:      6,
		FixtureColor:    DefaultFixtureColor,
		IdleTimeout:     30 * time.Minute,
		ReapInterval:    time.Minute,
		MaxSessions:     256,
	}
}

// Manager owns every playback session. It is a suture.Service: Serve runs
// the idle reaper and stops all timers on shutdown.
type Manager struct {
	base     *table.Table
	fixtures []models.Fixture
	cfg      Config
	pub      FramePublisher

	// runCtx parents every session timer; Shutdown cancels it.
	runCtx    context.Context
	cancelRun context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a manager over the point table and placed fixtures.
func NewManager(base *table.Table, placed []models.Fixture, cfg Config, pub FramePublisher) (*Manager, error) {
	if err := checkPeriod(base); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.FixtureColor == "" {
		cfg.FixtureColor = DefaultFixtureColor
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	return &Manager{
		base:      base,
		fixtures:  placed,
		cfg:       cfg,
		pub:       pub,
		runCtx:    runCtx,
		cancelRun: cancelRun,
		sessions:  make(map[string]*Session),
	}, nil
}

// String implements fmt.Stringer for suture logging.
func (m *Manager) String() string {
	return "playback-manager"
}

// DateBounds returns the first and last calendar days of the table. ok is
// false for an empty table.
func (m *Manager) DateBounds() (first, last time.Time, ok bool) {
	f, ok := m.base.First()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	l, _ := m.base.Last()
	return f, l, true
}

// Location returns the zone dates are interpreted in.
func (m *Manager) Location() *time.Location {
	if f, ok := m.base.First(); ok {
		return f.Location()
	}
	return time.Local
}

// Create opens a session on date. A zero date selects the table's first day.
func (m *Manager) Create(ctx context.Context, date time.Time) (*Session, error) {
	if date.IsZero() {
		if first, _, ok := m.DateBounds(); ok {
			date = first
		} else {
			date = m.cfg.now()
		}
	}
	state, err := NewState(m.base, m.cfg.CutoffHour, date)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.runCtx.Err() != nil {
		m.mu.Unlock()
		return nil, ErrManagerStopped
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, m.cfg.MaxSessions)
	}
	id := uuid.New().String()
	s := newSession(m.runCtx, id, state, m.fixtures, m.cfg, m.pub)
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.PlaybackSessions.Set(float64(n))
	logging.Ctx(logging.ContextWithSessionID(ctx, id)).Info().
		Str("date", state.Date().Format(DateLayout)).
		Int("rows", state.Rows()).
		Msg("Playback session created")
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close stops and forgets the session with id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	metrics.PlaybackSessions.Set(float64(n))
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the open session ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Reap closes sessions no client has touched since now-IdleTimeout. Timer
// ticks do not count as activity.
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		metrics.PlaybackSessionsReaped.Add(float64(len(idle)))
		metrics.PlaybackSessions.Set(float64(n))
		logging.Info().Int("reaped", len(idle)).Int("open", n).Msg("Idle playback sessions closed")
	}
	return len(idle)
}

// Serve runs the reaper until ctx is cancelled, then closes every session.
// Session timers are also stopped as soon as ctx is done.
func (m *Manager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()
	stop := context.AfterFunc(ctx, m.cancelRun)
	defer stop()

	logging.Info().
		Dur("refresh", m.cfg.RefreshInterval).
		Dur("idle_timeout", m.cfg.IdleTimeout).
		Msg("Playback manager started")

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			m.Reap(m.cfg.now())
		}
	}
}

// Shutdown stops every session timer and forgets all sessions. Create
// fails afterwards.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.cancelRun()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	metrics.PlaybackSessions.Set(0)
	if len(sessions) > 0 {
		logging.Info().Int("closed", len(sessions)).Msg("Playback sessions stopped")
	}
}
