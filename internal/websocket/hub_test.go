// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/models"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, done
}

func testClient(hub *Hub, sessionID string) *Client {
	return NewClient(hub, nil, sessionID)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case m, ok := <-c.send:
		return m, ok
	case <-time.After(200 * time.Millisecond):
		return Message{}, false
	}
}

func TestHub_SessionRouting(t *testing.T) {
	hub, _, _ := startHub(t)
	a := testClient(hub, "session-a")
	b := testClient(hub, "session-b")
	hub.Register <- a
	hub.Register <- b
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.PublishFrame(models.Frame{SessionID: "session-a", Label: "Tue Mar 01     06:00"})

	msg, ok := receive(t, a)
	if !ok || msg.Type != MessageTypeFrame || msg.SessionID != "session-a" {
		t.Fatalf("client a got %+v, %v", msg, ok)
	}
	if frame, isFrame := msg.Data.(models.Frame); !isFrame || frame.Label != "Tue Mar 01     06:00" {
		t.Errorf("frame data = %#v", msg.Data)
	}
	if _, ok := receive(t, b); ok {
		t.Error("client b should not receive session-a frames")
	}

	hub.BroadcastJSON("notice", map[string]string{"text": "reloaded"})
	for _, c := range []*Client{a, b} {
		if msg, ok := receive(t, c); !ok || msg.Type != "notice" {
			t.Errorf("client %d broadcast = %+v, %v", c.ID(), msg, ok)
		}
	}

	if got := hub.SessionClientCount("session-a"); got != 1 {
		t.Errorf("SessionClientCount = %d, want 1", got)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub, _, _ := startHub(t)
	c := testClient(hub, "s")
	hub.Register <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}

	// A second unregister of the same client is a no-op.
	hub.Unregister <- c
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub, _, _ := startHub(t)
	c := testClient(hub, "s")
	hub.Register <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	for i := 0; i < sendBuffer+10; i++ {
		hub.PublishFrame(models.Frame{SessionID: "s"})
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
}

func TestHub_Shutdown(t *testing.T) {
	hub, cancel, done := startHub(t)
	c := testClient(hub, "s")
	hub.Register <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Error("clients should be closed on shutdown")
	}
}

func TestClient_EndToEnd(t *testing.T) {
	hub, _, _ := startHub(t)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("session"))
		hub.Register <- client
		client.Start()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=abc"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.SessionClientCount("abc") == 1 })

	hub.PublishFrame(models.Frame{SessionID: "abc", Offset: 300, Rows: 217})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var got struct {
		Type      string       `json:"type"`
		SessionID string       `json:"session_id"`
		Data      models.Frame `json:"data"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != MessageTypeFrame || got.Data.Offset != 300 || got.Data.Rows != 217 {
		t.Errorf("message = %+v", got)
	}

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON(ping) error = %v", err)
	}
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage(pong) error = %v", err)
	}
	if !strings.Contains(string(data), `"type":"pong"`) {
		t.Errorf("pong = %s", data)
	}
}
