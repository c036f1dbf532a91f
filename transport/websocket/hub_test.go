package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/sinking-island/game/engine"
)

func newTestClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, buffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(0, nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected default buffer %d, got %d", engine.WebSocketBufferSize, cap(hub.broadcast))
	}
	if hub.logger == nil {
		t.Error("Hub logger is nil")
	}

	if got := cap(NewHub(8, nil).broadcast); got != 8 {
		t.Errorf("Expected buffer 8, got %d", got)
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(0, nil)
	client := newTestClient(hub, "test-session", 4)

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("TEST-SESSION") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(0, nil)
	client := newTestClient(hub, "test-session", 4)

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister must not panic on the closed channel.
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(0, nil)
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID, 4)
	client2 := newTestClient(hub, sessionID, 4)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(0, nil)
	target := newTestClient(hub, "abcd", 4)
	other := newTestClient(hub, "efgh", 4)
	hub.registerClient(target)
	hub.registerClient(other)

	state := &engine.GameState{
		Adventurer: engine.AdventurerView{Position: engine.Position{X: 5, Y: 3}, ActionsRemaining: 2},
		Turn:       4,
		Status:     engine.InProgress,
	}

	hub.BroadcastToSession("ABCD", state)
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-target.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.ID == "" {
			t.Error("Expected a message id")
		}
		if message.SessionID != "ABCD" {
			t.Errorf("Expected session_id ABCD, got %s", message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %q", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || message.GameState.Adventurer.Position != (engine.Position{X: 5, Y: 3}) {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	default:
		t.Error("No message delivered to the session's client")
	}

	select {
	case <-other.send:
		t.Error("Client of another session received the update")
	default:
	}
}

func TestHubBroadcastIDsAreUnique(t *testing.T) {
	hub := NewHub(4, nil)

	hub.BroadcastToSession("abcd", &engine.GameState{Turn: 1})
	hub.BroadcastToSession("abcd", &engine.GameState{Turn: 2})

	first, second := <-hub.broadcast, <-hub.broadcast
	if first.ID == second.ID {
		t.Errorf("Expected distinct ids, both %q", first.ID)
	}
	if second.Event != EventStateUpdate || second.GameState.Turn != 2 {
		t.Errorf("Unexpected second message: %+v", second)
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(2, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.BroadcastToSession("abcd", &engine.GameState{Turn: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked on a full queue")
	}
	if len(hub.broadcast) != 2 {
		t.Errorf("Expected 2 queued messages, got %d", len(hub.broadcast))
	}
	if m := <-hub.broadcast; m.GameState.Turn != 0 {
		t.Errorf("Expected the oldest update to be kept, got turn %d", m.GameState.Turn)
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := NewHub(0, nil)
	slow := newTestClient(hub, "abcd", 1)
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "abcd", Event: EventStateUpdate})
	hub.broadcastMessage(&Message{SessionID: "abcd", Event: EventStateUpdate})

	if hub.ClientCount("abcd") != 0 {
		t.Error("Slow client should have been disconnected")
	}
}

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub, server, _ := startHub(t)

	conn := dial(t, server, "ws-test")
	waitFor(t, "registration", func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()
	waitFor(t, "unregistration", func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub, server, _ := startHub(t)

	conn := dial(t, server, "msg-test")
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount("msg-test") == 1 })

	state := &engine.GameState{
		Adventurer: engine.AdventurerView{Position: engine.Position{X: 2, Y: 6}, HasArtifact: true},
		Status:     engine.Won,
	}
	hub.BroadcastToSession("msg-test", state)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "msg-test" || message.Event != EventStateUpdate {
		t.Errorf("Unexpected envelope: %+v", message)
	}
	if message.GameState.Status != engine.Won || !message.GameState.Adventurer.HasArtifact {
		t.Errorf("GameState not correctly received: %+v", message.GameState)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub, server, cancel := startHub(t)

	conn := dial(t, server, "stop-test")
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount("stop-test") == 1 })

	cancel()
	waitFor(t, "shutdown", func() bool { return hub.ClientCount("stop-test") == 0 })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after shutdown")
	}
}
