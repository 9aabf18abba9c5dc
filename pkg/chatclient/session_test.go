package chatclient

import "testing"

func TestPairKeyIsSymmetric(t *testing.T) {
	if PairKey(7, 42) != PairKey(42, 7) {
		t.Fatalf("pair key should not depend on order: %q vs %q", PairKey(7, 42), PairKey(42, 7))
	}
	if PairKey(7, 42) != "7-42" {
		t.Fatalf("unexpected pair key: %q", PairKey(7, 42))
	}
}

func TestMergePushAppendsToSharedThread(t *testing.T) {
	session := NewSession(1)

	session.MergePush(Message{ID: 10, SenderID: 1, ReceiverID: 2, Body: "hi"})
	session.MergePush(Message{ID: 11, SenderID: 2, ReceiverID: 1, Body: "hello"})

	thread := session.Thread(2)
	if len(thread) != 2 {
		t.Fatalf("expected both directions in one thread, got %d entries", len(thread))
	}
	if thread[0].Body != "hi" || thread[1].Body != "hello" {
		t.Fatalf("unexpected thread order: %+v", thread)
	}
}

func TestMergePushDropsDuplicateServerID(t *testing.T) {
	session := NewSession(1)

	session.MergePull(2, []Message{{ID: 10, SenderID: 2, ReceiverID: 1, Body: "hello"}})
	session.MergePush(Message{ID: 10, SenderID: 2, ReceiverID: 1, Body: "hello"})

	if thread := session.Thread(2); len(thread) != 1 {
		t.Fatalf("push duplicating a pulled id should be dropped, got %d entries", len(thread))
	}
}

func TestMergePushKeepsOptimisticEntries(t *testing.T) {
	session := NewSession(1)

	session.MergePush(Message{SenderID: 1, ReceiverID: 2, Body: "pending"})
	session.MergePush(Message{SenderID: 1, ReceiverID: 2, Body: "pending"})

	if thread := session.Thread(2); len(thread) != 2 {
		t.Fatalf("entries without a server id are always appended, got %d", len(thread))
	}
}

func TestMergePullReplacesThreadWholesale(t *testing.T) {
	session := NewSession(1)

	session.MergePush(Message{SenderID: 2, ReceiverID: 1, Body: "stale"})
	session.MergePull(2, []Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, Body: "first"},
		{ID: 2, SenderID: 2, ReceiverID: 1, Body: "second"},
	})

	thread := session.Thread(2)
	if len(thread) != 2 || thread[0].Body != "first" || thread[1].Body != "second" {
		t.Fatalf("pull should replace cached history: %+v", thread)
	}
}

func TestMergePullLeavesOtherThreadsAlone(t *testing.T) {
	session := NewSession(1)

	session.MergePush(Message{ID: 5, SenderID: 3, ReceiverID: 1, Body: "other"})
	session.MergePull(2, []Message{{ID: 1, SenderID: 2, ReceiverID: 1, Body: "hello"}})

	if thread := session.Thread(3); len(thread) != 1 || thread[0].Body != "other" {
		t.Fatalf("unrelated thread was touched: %+v", thread)
	}
}

func TestSetCurrentIsPureTransition(t *testing.T) {
	session := NewSession(1)

	summary := &ConversationSummary{OtherUserID: 2, OtherUsername: "dana"}
	session.SetCurrent(summary)

	if current := session.Current(); current == nil || current.OtherUserID != 2 {
		t.Fatalf("unexpected current conversation: %+v", current)
	}
	if len(session.Thread(2)) != 0 {
		t.Fatal("selecting a conversation must not populate its thread")
	}

	session.SetCurrent(nil)
	if session.Current() != nil {
		t.Fatal("expected current conversation to be cleared")
	}
}
