package service

import (
	"context"
	"fmt"

	"ripple/internal/models"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

const maxMessageLength = 2000

// MessageService handles direct messages between users.
type MessageService struct {
	db       *gorm.DB
	messages repository.MessageRepository
	users    repository.UserRepository
	blocks   repository.BlockRepository
	notifier Notifier
}

// NewMessageService creates a new message service
func NewMessageService(db *gorm.DB, messages repository.MessageRepository, users repository.UserRepository, blocks repository.BlockRepository, notifier Notifier) *MessageService {
	return &MessageService{
		db:       db,
		messages: messages,
		users:    users,
		blocks:   blocks,
		notifier: notifier,
	}
}

// SendMessage delivers a direct message and notifies the receiver in the
// same transaction. A block in either direction rejects the send.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewValidationError("Message content cannot be empty")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("Message content must be at most 2000 characters")
	}
	if senderID == receiverID {
		return nil, models.NewInvalidOperationError("Cannot message yourself")
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	blocked, err := s.blocks.ExistsBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewInvalidOperationError("Cannot message this user")
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.messages.WithTx(tx).Create(ctx, message); err != nil {
			return err
		}
		notice := fmt.Sprintf("New message from %s.", sender.Username)
		return s.notifier.NotifyTx(ctx, tx, receiverID, notice, "message")
	})
	if err != nil {
		return nil, txError(err)
	}
	return message, nil
}

// ListInbox returns messages received by the user, newest first.
func (s *MessageService) ListInbox(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.messages.ListInbox(ctx, userID, limit, offset)
}

// ListSent returns messages sent by the user, newest first.
func (s *MessageService) ListSent(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.messages.ListSent(ctx, userID, limit, offset)
}
