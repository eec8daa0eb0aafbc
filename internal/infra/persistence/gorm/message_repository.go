package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// GormMessageRepository is the GORM implementation of
// repository.MessageRepository.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates the repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: save message %s: %w", msg.ID, err)
	}
	return nil
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: find message by id %s: %w", id, err)
	}
	return &msg, nil
}

func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int, before *time.Time) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 30
	}
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var msgs []domain.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("gorm: list messages for conversation %s: %w", conversationID, err)
	}
	return msgs, nil
}

// GormReceiptRepository is the GORM implementation of
// repository.ReceiptRepository.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates the repository.
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	if db == nil {
		panic("database connection cannot be nil for GormReceiptRepository")
	}
	return &GormReceiptRepository{db: db}
}

// CreateDelivered inserts delivered receipts in one batch, skipping
// (message, user) pairs that already exist.
func (r *GormReceiptRepository) CreateDelivered(ctx context.Context, messageID string, userIDs []string, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	receipts := make([]domain.Receipt, 0, len(userIDs))
	for _, userID := range userIDs {
		deliveredAt := at
		receipts = append(receipts, domain.Receipt{
			MessageID:   messageID,
			UserID:      userID,
			DeliveredAt: &deliveredAt,
		})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipts).Error
	if err != nil {
		return fmt.Errorf("gorm: create delivered receipts for message %s: %w", messageID, err)
	}
	return nil
}

// MarkRead upserts the read receipt. The SQL guard keeps ReadAt monotonic
// even when two gateway instances race on the same pair.
func (r *GormReceiptRepository) MarkRead(ctx context.Context, messageID, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Receipt{}).
		Where("message_id = ? AND user_id = ? AND (read_at IS NULL OR read_at < ?)", messageID, userID, at).
		Update("read_at", at)
	if res.Error != nil {
		return fmt.Errorf("gorm: mark read (message %s, user %s): %w", messageID, userID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Either no row exists yet, or the existing ReadAt is already later.
	readAt := at
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Receipt{MessageID: messageID, UserID: userID, ReadAt: &readAt}).Error
	if err != nil {
		return fmt.Errorf("gorm: create read receipt (message %s, user %s): %w", messageID, userID, err)
	}
	return nil
}

func (r *GormReceiptRepository) Find(ctx context.Context, messageID, userID string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find receipt (message %s, user %s): %w", messageID, userID, err)
	}
	return &receipt, nil
}
