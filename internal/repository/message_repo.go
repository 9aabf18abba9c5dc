package repository

import (
	"context"

	"github.com/acoder25/Electronics-marketplace/internal/models"
)

// MessageRepository is the durable, append-only store for direct messages.
// Messages are never updated or deleted; ids and timestamps are assigned by
// the database on insert.
type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(
	ctx context.Context,
	senderID int64,
	receiverID int64,
	productID *int64,
	body string,
) (*models.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, product_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, receiver_id, product_id, body, created_at
	`

	var message models.Message
	err := r.db.QueryRow(ctx, query, senderID, receiverID, productID, body).Scan(
		&message.ID,
		&message.SenderID,
		&message.ReceiverID,
		&message.ProductID,
		&message.Body,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// Thread returns every message between the unordered pair {userID, otherID},
// oldest first. Direction does not matter for grouping, so
// Thread(a, b) and Thread(b, a) yield the same sequence.
func (r *MessageRepository) Thread(
	ctx context.Context,
	userID int64,
	otherID int64,
) ([]models.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.product_id, m.body, m.created_at,
		       u.username AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(
			&message.ID,
			&message.SenderID,
			&message.ReceiverID,
			&message.ProductID,
			&message.Body,
			&message.CreatedAt,
			&message.SenderName,
		); err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// ConversationsFor lists one summary per distinct counterpart of userID,
// carrying that counterpart's newest message, ordered newest conversation
// first. A user with no messages gets an empty slice.
func (r *MessageRepository) ConversationsFor(
	ctx context.Context,
	userID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT other_user_id, other_username, last_message_time, last_message
		FROM (
			SELECT DISTINCT ON (CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END)
				CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_user_id,
				u.username AS other_username,
				m.created_at AS last_message_time,
				m.body AS last_message
			FROM messages m
			JOIN users u ON u.id = CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END
			WHERE m.sender_id = $1 OR m.receiver_id = $1
			ORDER BY CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END,
				m.created_at DESC, m.id DESC
		) latest
		ORDER BY last_message_time DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		if err := rows.Scan(
			&summary.OtherUserID,
			&summary.OtherUsername,
			&summary.LastMessageTime,
			&summary.LastMessage,
		); err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
