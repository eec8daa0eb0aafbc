package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// GormNotificationRepository is the GORM implementation of
// repository.NotificationRepository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates the repository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormNotificationRepository")
	}
	return &GormNotificationRepository{db: db}
}

// CreateOnce inserts the notification unless the (user, event) pair already
// exists. Duplicate deliveries of the same event are absorbed here.
func (r *GormNotificationRepository) CreateOnce(ctx context.Context, n *domain.Notification) (bool, error) {
	err := r.db.WithContext(ctx).Create(n).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return false, nil
		}
		return false, fmt.Errorf("gorm: create notification for user %s (event %s): %w", n.UserID, n.EventID, err)
	}
	return true, nil
}

func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

// MarkRead only touches unread rows owned by userID; read state is
// user-owned and set once.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at).Error
	if err != nil {
		return fmt.Errorf("gorm: mark notification %s read for user %s: %w", id, userID, err)
	}
	return nil
}

func (r *GormNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm: delete read notifications before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
