package chatclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	websocket "github.com/fasthttp/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newLiveServer serves the live endpoint with a fixed set of frames to push,
// and the HTTP send route, so Connect and the fallback work against it.
func newLiveServer(t *testing.T, frames []map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/ws":
			conn, err := testUpgrader.Upgrade(w, r, nil)
			if err != nil {
				t.Errorf("Upgrade: %v", err)
				return
			}
			defer conn.Close()

			for _, frame := range frames {
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
			// Hold the connection open until the client hangs up.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		case "/api/v1/messages":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"message": Message{ID: 9, SenderID: 1, ReceiverID: 2, Body: "hello"},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
}

func waitForEvent(t *testing.T, events <-chan PushEvent) PushEvent {
	t.Helper()

	select {
	case event := <-events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a pushed frame")
		return PushEvent{}
	}
}

func TestConnectMergesPushedMessages(t *testing.T) {
	server := newLiveServer(t, []map[string]any{
		{"type": "message", "senderId": 2, "message": "hi there", "timestamp": "2026-05-01T09:00:00Z"},
	})
	defer server.Close()

	client := New(server.URL, "token-1", 1)
	defer client.Close()

	events := make(chan PushEvent, 4)
	if err := client.Connect(func(event PushEvent) { events <- event }); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !client.Live() {
		t.Fatal("expected live mode after a successful dial")
	}

	event := waitForEvent(t, events)
	if event.Type != "message" || event.SenderID != 2 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if thread := client.Session().Thread(2); len(thread) != 1 || thread[0].Body != "hi there" {
		t.Fatalf("pushed message not merged: %+v", thread)
	}
}

func TestErrorFramesReachTheCallback(t *testing.T) {
	server := newLiveServer(t, []map[string]any{
		{"type": "error", "message": "failed to send message", "timestamp": "2026-05-01T09:00:00Z"},
	})
	defer server.Close()

	client := New(server.URL, "token-1", 1)
	defer client.Close()

	events := make(chan PushEvent, 4)
	if err := client.Connect(func(event PushEvent) { events <- event }); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	event := waitForEvent(t, events)
	if event.Type != "error" || event.Message != "failed to send message" {
		t.Fatalf("expected the server rejection to surface, got %+v", event)
	}
	if thread := client.Session().Thread(2); len(thread) != 0 {
		t.Fatalf("an error frame must not be merged as a message: %+v", thread)
	}
}

func TestFailedLiveWriteDegradesToPullOnly(t *testing.T) {
	server := newLiveServer(t, nil)
	defer server.Close()

	client := New(server.URL, "token-1", 1)
	defer client.Close()

	if err := client.Connect(nil); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Kill the transport under the websocket so the next live write fails.
	client.mu.Lock()
	conn := client.conn
	client.mu.Unlock()
	if conn == nil {
		t.Fatal("expected a live connection")
	}
	conn.UnderlyingConn().Close()

	if err := client.Send(2, "hello", nil); err != nil {
		t.Fatalf("Send should fall back to HTTP, got %v", err)
	}
	if client.Live() {
		t.Fatal("expected pull-only mode after the live write failed")
	}
	if thread := client.Session().Thread(2); len(thread) != 1 || thread[0].ID != 9 {
		t.Fatalf("fallback send not reflected locally: %+v", thread)
	}
}
