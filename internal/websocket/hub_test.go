package chatws

import (
	"encoding/json"
	"testing"
)

func TestRegisterLastWriterWins(t *testing.T) {
	hub := NewHub()
	first := NewClient(hub, nil, 7)
	second := NewClient(hub, nil, 7)

	hub.Register(first)
	hub.Register(second)

	if got := hub.Lookup(7); got != second {
		t.Fatalf("expected newest client to win, got %p want %p", got, second)
	}
}

func TestStaleUnregisterKeepsNewerConnection(t *testing.T) {
	hub := NewHub()
	stale := NewClient(hub, nil, 7)
	current := NewClient(hub, nil, 7)

	hub.Register(stale)
	hub.Register(current)
	hub.Unregister(stale)

	if got := hub.Lookup(7); got != current {
		t.Fatalf("stale unregister evicted the newer connection")
	}

	// The stale client's channel must still be released so its write pump
	// can exit.
	if _, open := <-stale.send; open {
		t.Fatalf("expected stale send channel to be closed")
	}

	hub.Unregister(current)
	if got := hub.Lookup(7); got != nil {
		t.Fatalf("expected user offline after unregister, got %p", got)
	}
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, 3)

	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)
}

func TestDeliverToOfflineUserIsAMiss(t *testing.T) {
	hub := NewHub()

	if hub.Deliver(42, &Event{Type: "message", SenderID: 1, Message: "hello"}) {
		t.Fatalf("expected delivery miss for offline user")
	}
}

func TestDeliverPushesToReceiverOnly(t *testing.T) {
	hub := NewHub()
	sender := NewClient(hub, nil, 1)
	receiver := NewClient(hub, nil, 2)
	hub.Register(sender)
	hub.Register(receiver)

	if !hub.Deliver(2, &Event{Type: "message", SenderID: 1, Message: "hi"}) {
		t.Fatalf("expected delivery to online receiver")
	}

	select {
	case payload := <-receiver.send:
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if event.Type != "message" || event.SenderID != 1 || event.Message != "hi" {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatalf("expected a frame in the receiver's send buffer")
	}

	select {
	case payload := <-sender.send:
		t.Fatalf("sender must not receive an echo, got %s", payload)
	default:
	}
}

func TestDeliverDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	receiver := NewClient(hub, nil, 2)
	hub.Register(receiver)

	for i := 0; i < cap(receiver.send); i++ {
		receiver.send <- []byte("{}")
	}

	if hub.Deliver(2, &Event{Type: "message", SenderID: 1, Message: "overflow"}) {
		t.Fatalf("expected delivery to fail when the buffer is full")
	}
}
