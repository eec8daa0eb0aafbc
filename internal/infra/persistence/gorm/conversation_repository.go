package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// GormConversationRepository is the GORM implementation of
// repository.ConversationRepository.
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates the repository.
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormConversationRepository")
	}
	return &GormConversationRepository{db: db}
}

// isDuplicateEntry maps the MySQL unique-constraint violation (error 1062)
// to the repository sentinel.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}
		return nil, fmt.Errorf("gorm: find conversation by id %s: %w", id, err)
	}
	return &conv, nil
}

func (r *GormConversationRepository) FindByPairKey(ctx context.Context, pairKey string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}
		return nil, fmt.Errorf("gorm: find conversation by pair key '%s': %w", pairKey, err)
	}
	return &conv, nil
}

func (r *GormConversationRepository) FindByClanID(ctx context.Context, clanID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("clan_id = ?", clanID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}
		return nil, fmt.Errorf("gorm: find conversation by clan id '%s': %w", clanID, err)
	}
	return &conv, nil
}

// CreateWithMembers inserts the conversation plus its seed members in one
// transaction. A unique-key violation on the conversation insert means a
// concurrent caller won the creation race; the caller re-reads the winner.
func (r *GormConversationRepository) CreateWithMembers(ctx context.Context, conv *domain.Conversation, memberIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			member := domain.ConversationMember{
				ConversationID: conv.ID,
				UserID:         userID,
				JoinedAt:       time.Now().UTC(),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create conversation %s with %d members: %w", conv.ID, len(memberIDs), err)
	}
	return nil
}

// UpsertMember inserts the membership row or clears LeftAt on the existing
// one, so reactivation looks exactly like a fresh join.
func (r *GormConversationRepository) UpsertMember(ctx context.Context, conversationID, userID string) error {
	member := domain.ConversationMember{
		ConversationID: conversationID,
		UserID:         userID,
		JoinedAt:       time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"left_at": nil}),
		}).
		Create(&member).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert member (conversation %s, user %s): %w", conversationID, userID, err)
	}
	return nil
}

func (r *GormConversationRepository) DeactivateMember(ctx context.Context, conversationID, userID string) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&domain.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Update("left_at", now).Error
	if err != nil {
		return fmt.Errorf("gorm: deactivate member (conversation %s, user %s): %w", conversationID, userID, err)
	}
	return nil
}

func (r *GormConversationRepository) FindMember(ctx context.Context, conversationID, userID string) (*domain.ConversationMember, error) {
	var member domain.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMemberNotFound
		}
		return nil, fmt.Errorf("gorm: find member (conversation %s, user %s): %w", conversationID, userID, err)
	}
	return &member, nil
}

func (r *GormConversationRepository) ListActiveMemberIDs(ctx context.Context, conversationID string) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&domain.ConversationMember{}).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list active members of conversation %s: %w", conversationID, err)
	}
	return userIDs, nil
}

func (r *GormConversationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_members cm ON cm.conversation_id = conversations.id").
		Where("cm.user_id = ? AND cm.left_at IS NULL", userID).
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list conversations for user %s: %w", userID, err)
	}
	return convs, nil
}

func (r *GormConversationRepository) Touch(ctx context.Context, conversationID string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("gorm: touch conversation %s: %w", conversationID, err)
	}
	return nil
}
