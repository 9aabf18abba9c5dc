package models

import "time"

// Message is a single direct message between two users. Conversations are
// derived from the unordered {sender, receiver} pair; there is no conversation
// row in the database.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	ProductID  *int64    `json:"product_id"`
	Body       string    `json:"message"`
	SenderName string    `json:"sender_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ConversationSummary struct {
	OtherUserID     int64     `json:"other_user_id"`
	OtherUsername   string    `json:"other_username"`
	LastMessageTime time.Time `json:"last_message_time"`
	LastMessage     string    `json:"last_message"`
}
