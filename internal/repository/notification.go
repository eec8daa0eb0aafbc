package repository

import (
	"context"
	"time"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// NotificationRepository stores durable per-user notifications.
type NotificationRepository interface {
	// CreateOnce inserts the notification unless one already exists for the
	// same (user, causing event). Returns false with a nil error when the
	// duplicate was absorbed.
	CreateOnce(ctx context.Context, n *domain.Notification) (bool, error)

	// ListByUser returns up to limit notifications, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)

	// MarkRead sets ReadAt on an unread notification owned by userID.
	// Already-read rows are left untouched.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error

	// DeleteReadBefore removes read notifications created before cutoff and
	// returns the number of rows deleted. Used by the retention sweep.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
