package services

import (
	"context"
	"errors"
	"strings"

	"github.com/acoder25/Electronics-marketplace/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type messageStore interface {
	Append(ctx context.Context, senderID int64, receiverID int64, productID *int64, body string) (*models.Message, error)
	Thread(ctx context.Context, userID int64, otherID int64) ([]models.Message, error)
	ConversationsFor(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
}

// ChatService validates and persists direct messages. Persistence is the
// durability boundary: a message that fails to store is not sent, and callers
// must not attempt live delivery for it. Live delivery itself is the
// connection layer's job, after SendMessage returns.
type ChatService struct {
	messages messageStore
	users    userReader
}

func NewChatService(messages messageStore, users userReader) *ChatService {
	return &ChatService{
		messages: messages,
		users:    users,
	}
}

func (s *ChatService) SendMessage(
	ctx context.Context,
	senderID int64,
	receiverID int64,
	productID *int64,
	body string,
) (*models.Message, error) {
	if senderID <= 0 || receiverID <= 0 || receiverID == senderID {
		return nil, ErrInvalidInput
	}

	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}
	if productID != nil && *productID <= 0 {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.messages.Append(ctx, senderID, receiverID, productID, trimmed)
}

func (s *ChatService) Thread(
	ctx context.Context,
	actorID int64,
	otherID int64,
) ([]models.Message, error) {
	if actorID <= 0 || otherID <= 0 {
		return nil, ErrInvalidInput
	}

	return s.messages.Thread(ctx, actorID, otherID)
}

func (s *ChatService) ListConversations(
	ctx context.Context,
	actorID int64,
) ([]models.ConversationSummary, error) {
	if actorID <= 0 {
		return nil, ErrInvalidInput
	}

	return s.messages.ConversationsFor(ctx, actorID)
}
