// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/assemblylights/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	frames []models.Frame
}

func (p *recordingPublisher) PublishFrame(f models.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func (p *recordingPublisher) last() models.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames[len(p.frames)-1]
}

func newTestManager(t *testing.T, pub FramePublisher) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RefreshInterval = 2 * time.Millisecond
	m, err := NewManager(pointTable(t), testFixtures(), cfg, pub)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(m.Shutdown)
	return m
}

func TestManager_CreateGetClose(t *testing.T) {
	m := newTestManager(t, nil)

	s, err := m.Create(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !s.State().Date().Equal(day1) {
		t.Errorf("default date = %s, want first day", s.State().Date())
	}

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if err := m.Close(s.ID()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Close error = %v", err)
	}
	if err := m.Close(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestManager_MaxSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	m, err := NewManager(pointTable(t), testFixtures(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Shutdown()

	if _, err := m.Create(context.Background(), day1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(context.Background(), day1); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("Create() over limit error = %v", err)
	}
}

func TestSession_PlayPause(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, pub)
	s, _ := m.Create(context.Background(), day1)

	if started, err := s.Play(); err != nil || !started {
		t.Fatalf("Play() = %v, %v", started, err)
	}
	if started, _ := s.Play(); started {
		t.Error("Play() while playing should be a no-op")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.State().Offset() < 900 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if s.State().Offset() < 900 {
		t.Fatalf("offset = %d after playing, want >= 900", s.State().Offset())
	}

	if !s.Pause() {
		t.Error("Pause() returned false")
	}
	if s.Pause() {
		t.Error("second Pause() should be a no-op")
	}
	if s.Playing() {
		t.Error("Playing() after Pause()")
	}
	if last := pub.last(); last.Playing {
		t.Error("last published frame still reports playing")
	}

	paused := s.State().Offset()
	time.Sleep(20 * time.Millisecond)
	if s.State().Offset() != paused {
		t.Error("offset advanced while paused")
	}
}

func TestSession_SetDatePausesAndRewinds(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, pub)
	s, _ := m.Create(context.Background(), day1)

	if _, err := s.Seek(3600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Play(); err != nil {
		t.Fatal(err)
	}

	frame, err := s.SetDate(context.Background(), day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("SetDate() error = %v", err)
	}
	if s.Playing() || frame.Playing {
		t.Error("SetDate() should pause playback")
	}
	if frame.Offset != 0 || frame.Date != "2016-03-02" {
		t.Errorf("frame after SetDate = offset %d date %s", frame.Offset, frame.Date)
	}
}

func TestSession_SeekOutOfRange(t *testing.T) {
	m := newTestManager(t, nil)
	s, _ := m.Create(context.Background(), day1)

	if _, err := s.Seek(-5); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Seek(-5) error = %v", err)
	}
	if s.State().Offset() != 0 {
		t.Error("failed Seek changed state")
	}
}

func TestSession_StepPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, pub)
	s, _ := m.Create(context.Background(), day1)

	frame, err := s.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if frame.Offset != 300 || frame.SessionID != s.ID() {
		t.Errorf("Step() frame = %+v", frame)
	}
	if pub.count() != 1 {
		t.Errorf("published %d frames, want 1", pub.count())
	}
}

func TestManager_Reap(t *testing.T) {
	pub := &recordingPublisher{}
	cfg := DefaultConfig()
	cfg.IdleTimeout = time.Minute
	now := day1
	cfg.now = func() time.Time { return now }

	m, err := NewManager(pointTable(t), testFixtures(), cfg, pub)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Shutdown()

	idle, _ := m.Create(context.Background(), day1)
	now = now.Add(30 * time.Second)
	fresh, _ := m.Create(context.Background(), day1)

	if n := m.Reap(day1.Add(75 * time.Second)); n != 1 {
		t.Fatalf("Reap() = %d, want 1", n)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived reaping")
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Errorf("fresh session reaped: %v", err)
	}
}

func TestManager_ServeStopsSessions(t *testing.T) {
	m := newTestManager(t, nil)
	s, _ := m.Create(context.Background(), day1)
	if _, err := s.Play(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if s.Playing() {
		t.Error("session still playing after Serve returned")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after shutdown", m.Len())
	}
}

func TestSession_ClosedRejectsTransitions(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, pub)
	s, _ := m.Create(context.Background(), day1)
	if err := m.Close(s.ID()); err != nil {
		t.Fatal(err)
	}

	if started, err := s.Play(); started || !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Play() after Close = %v, %v", started, err)
	}
	if _, err := s.Step(); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Step() after Close error = %v", err)
	}
	if _, err := s.Seek(300); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Seek() after Close error = %v", err)
	}
	if _, err := s.SetDate(context.Background(), day1); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SetDate() after Close error = %v", err)
	}
	if s.Playing() || !s.Closed() {
		t.Error("closed session should be stopped")
	}

	m.Shutdown()
	before := pub.count()
	time.Sleep(20 * time.Millisecond)
	if after := pub.count(); after != before {
		t.Errorf("closed session published %d frames after shutdown", after-before)
	}
}

func TestSession_CloseRacesPlay(t *testing.T) {
	m := newTestManager(t, nil)
	for i := 0; i < 50; i++ {
		s, err := m.Create(context.Background(), day1)
		if err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _, _ = s.Play() }()
		go func() { defer wg.Done(); _ = m.Close(s.ID()) }()
		wg.Wait()
		if s.Playing() {
			t.Fatalf("iteration %d: session playing after Close", i)
		}
	}
}

func TestSession_SetDateRacesPlay(t *testing.T) {
	m := newTestManager(t, nil)
	s, _ := m.Create(context.Background(), day1)
	next := day1.AddDate(0, 0, 1)

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		var frame models.Frame
		var err error
		wg.Add(2)
		go func() { defer wg.Done(); _, _ = s.Play() }()
		go func() { defer wg.Done(); frame, err = s.SetDate(context.Background(), next) }()
		wg.Wait()

		if err != nil {
			t.Fatalf("SetDate() error = %v", err)
		}
		if frame.Playing {
			t.Fatalf("iteration %d: SetDate() frame reports playing", i)
		}
		s.Pause()
	}
}

func TestManager_ShutdownStopsCreate(t *testing.T) {
	m := newTestManager(t, nil)
	m.Shutdown()
	if _, err := m.Create(context.Background(), day1); !errors.Is(err, ErrManagerStopped) {
		t.Errorf("Create() after Shutdown error = %v", err)
	}
}
