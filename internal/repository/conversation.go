package repository

import (
	"context"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// ConversationRepository stores conversations and their membership rows.
type ConversationRepository interface {
	// FindByID looks a conversation up by primary key.
	// Returns ErrConversationNotFound if absent.
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)

	// FindByPairKey looks a DM conversation up by its canonical pair key.
	FindByPairKey(ctx context.Context, pairKey string) (*domain.Conversation, error)

	// FindByClanID looks a clan conversation up by clan id.
	FindByClanID(ctx context.Context, clanID string) (*domain.Conversation, error)

	// CreateWithMembers inserts the conversation and its initial active
	// members in one transaction. Returns ErrDuplicateEntry when the
	// kind-specific unique key (pair key or clan id) already exists, i.e.
	// another caller won the creation race.
	CreateWithMembers(ctx context.Context, conv *domain.Conversation, memberIDs []string) error

	// UpsertMember activates membership for the user: inserts a row, or
	// clears LeftAt on an existing one. Reactivation is indistinguishable
	// from a fresh join.
	UpsertMember(ctx context.Context, conversationID, userID string) error

	// DeactivateMember sets LeftAt on the user's active membership row.
	// A no-op if the row is absent or already inactive.
	DeactivateMember(ctx context.Context, conversationID, userID string) error

	// FindMember returns the membership row regardless of its active state.
	// Returns ErrMemberNotFound if no row exists.
	FindMember(ctx context.Context, conversationID, userID string) (*domain.ConversationMember, error)

	// ListActiveMemberIDs returns user ids with LeftAt == NULL.
	ListActiveMemberIDs(ctx context.Context, conversationID string) ([]string, error)

	// ListForUser returns conversations where the user is an active member,
	// most recently updated first.
	ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error)

	// Touch bumps the conversation's UpdatedAt, used on new messages so
	// listings sort by recency.
	Touch(ctx context.Context, conversationID string) error
}
