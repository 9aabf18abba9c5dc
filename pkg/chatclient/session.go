package chatclient

import (
	"strconv"
	"sync"
)

// Message is one chat message as the server returns it, either from a thread
// pull or decoded from a live push.
type Message struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	ProductID  *int64 `json:"product_id,omitempty"`
	Body       string `json:"message"`
	CreatedAt  string `json:"created_at"`
}

// ConversationSummary mirrors one entry of the conversation list API.
type ConversationSummary struct {
	OtherUserID     int64  `json:"other_user_id"`
	OtherUsername   string `json:"other_username"`
	LastMessageTime string `json:"last_message_time"`
	LastMessage     string `json:"last_message"`
}

// PairKey builds an order-independent key for two user ids, so both sides of
// a conversation land in the same thread cache entry.
func PairKey(a int64, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "-" + strconv.FormatInt(b, 10)
}

// Session holds the locally known conversation list and per-thread message
// cache for one logged-in user. It reconciles full-thread pulls with
// individual live pushes. Safe for concurrent use; the live reader goroutine
// merges pushes while the UI reads.
type Session struct {
	mu            sync.Mutex
	selfID        int64
	threads       map[string][]Message
	conversations []ConversationSummary
	current       *ConversationSummary
}

func NewSession(selfID int64) *Session {
	return &Session{
		selfID:  selfID,
		threads: make(map[string][]Message),
	}
}

// MergePush appends a live-pushed message to its conversation thread. A
// message whose server id already appears in the cached thread is dropped, so
// a push racing a full pull does not duplicate an entry. Messages without a
// server id (optimistic local echoes) are always appended.
func (s *Session) MergePush(message Message) {
	key := PairKey(message.SenderID, message.ReceiverID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID != 0 {
		for _, existing := range s.threads[key] {
			if existing.ID == message.ID {
				return
			}
		}
	}
	s.threads[key] = append(s.threads[key], message)
}

// MergePull replaces the cached thread for a counterpart wholesale with the
// pulled history. The pull is the authoritative ordered log.
func (s *Session) MergePull(counterpartID int64, messages []Message) {
	key := PairKey(s.selfID, counterpartID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[key] = append([]Message(nil), messages...)
}

// SetConversations replaces the cached conversation list.
func (s *Session) SetConversations(conversations []ConversationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = append([]ConversationSummary(nil), conversations...)
}

func (s *Session) Conversations() []ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ConversationSummary(nil), s.conversations...)
}

// SetCurrent selects the active conversation. It is a pure state transition;
// fetching that conversation's history is the caller's job.
func (s *Session) SetCurrent(summary *ConversationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = summary
}

func (s *Session) Current() *ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Thread returns a copy of the cached thread with the given counterpart.
func (s *Session) Thread(counterpartID int64) []Message {
	key := PairKey(s.selfID, counterpartID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Message(nil), s.threads[key]...)
}
