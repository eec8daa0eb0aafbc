package repository

import (
	"context"
	"time"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// MessageRepository stores the append-only message log.
type MessageRepository interface {
	// Save inserts a new message row.
	Save(ctx context.Context, msg *domain.Message) error

	// FindByID returns ErrMessageNotFound if absent.
	FindByID(ctx context.Context, id string) (*domain.Message, error)

	// ListByConversation returns up to limit messages, newest first. When
	// before is non-nil only messages created strictly earlier are returned
	// (cursor pagination).
	ListByConversation(ctx context.Context, conversationID string, limit int, before *time.Time) ([]domain.Message, error)
}

// ReceiptRepository stores delivery/read receipts.
type ReceiptRepository interface {
	// CreateDelivered inserts delivered receipts for the given users,
	// skipping pairs that already exist.
	CreateDelivered(ctx context.Context, messageID string, userIDs []string, at time.Time) error

	// MarkRead upserts the reader's receipt with ReadAt = at. The write is
	// guarded so ReadAt never moves backward.
	MarkRead(ctx context.Context, messageID, userID string, at time.Time) error

	// Find returns ErrNotFound if no receipt row exists for the pair.
	Find(ctx context.Context, messageID, userID string) (*domain.Receipt, error)
}
