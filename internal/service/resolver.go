package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// PairKey builds the canonical, order-independent identifier of a DM pair.
func PairKey(userAID, userBID string) string {
	if userAID < userBID {
		return userAID + ":" + userBID
	}
	return userBID + ":" + userAID
}

// ConversationService resolves conversations race-safely. The racing callers
// may live on different process instances with no shared mutex, so the only
// correct strategy is create, catch the unique-constraint violation, and
// re-read the winner's row.
type ConversationService struct {
	convRepo repository.ConversationRepository
	log      *logrus.Entry
}

// NewConversationService creates the service.
func NewConversationService(convRepo repository.ConversationRepository) *ConversationService {
	if convRepo == nil {
		panic("ConversationRepository cannot be nil for ConversationService")
	}
	return &ConversationService{
		convRepo: convRepo,
		log:      logrus.WithField("component", "conversation_service"),
	}
}

// EnsureDM returns the single DM conversation for the unordered pair,
// creating it with both members active when absent. Safe under concurrent
// callers and duplicate event deliveries.
func (s *ConversationService) EnsureDM(ctx context.Context, userAID, userBID string) (*domain.Conversation, error) {
	if userAID == userBID {
		return nil, ErrSelfConversation
	}
	key := PairKey(userAID, userBID)

	conv, err := s.convRepo.FindByPairKey(ctx, key)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolver: lookup dm %s: %w", key, err)
	}

	pairKey := key
	created := &domain.Conversation{
		ID:      uuid.NewString(),
		Kind:    domain.ConversationDM,
		PairKey: &pairKey,
	}
	err = s.convRepo.CreateWithMembers(ctx, created, []string{userAID, userBID})
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"conversation_id": created.ID,
			"pair_key":        key,
		}).Info("DM conversation created")
		return created, nil
	}
	if errors.Is(err, repository.ErrDuplicateEntry) {
		// Another caller won the race; their row is the conversation.
		winner, readErr := s.convRepo.FindByPairKey(ctx, key)
		if readErr != nil {
			return nil, fmt.Errorf("resolver: re-read dm %s after lost race: %w", key, readErr)
		}
		return winner, nil
	}
	return nil, fmt.Errorf("resolver: create dm %s: %w", key, err)
}

// EnsureClan returns the single conversation for the clan, creating it when
// absent. leaderID, when non-empty, is seeded (or reactivated) as a member.
func (s *ConversationService) EnsureClan(ctx context.Context, clanID, leaderID string) (*domain.Conversation, error) {
	conv, err := s.convRepo.FindByClanID(ctx, clanID)
	if err == nil {
		if leaderID != "" {
			if err := s.convRepo.UpsertMember(ctx, conv.ID, leaderID); err != nil {
				return nil, err
			}
		}
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolver: lookup clan %s: %w", clanID, err)
	}

	clan := clanID
	created := &domain.Conversation{
		ID:     uuid.NewString(),
		Kind:   domain.ConversationClan,
		ClanID: &clan,
	}
	var members []string
	if leaderID != "" {
		members = []string{leaderID}
	}
	err = s.convRepo.CreateWithMembers(ctx, created, members)
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"conversation_id": created.ID,
			"clan_id":         clanID,
		}).Info("Clan conversation created")
		return created, nil
	}
	if errors.Is(err, repository.ErrDuplicateEntry) {
		winner, readErr := s.convRepo.FindByClanID(ctx, clanID)
		if readErr != nil {
			return nil, fmt.Errorf("resolver: re-read clan %s after lost race: %w", clanID, readErr)
		}
		if leaderID != "" {
			if err := s.convRepo.UpsertMember(ctx, winner.ID, leaderID); err != nil {
				return nil, err
			}
		}
		return winner, nil
	}
	return nil, fmt.Errorf("resolver: create clan %s: %w", clanID, err)
}

// AddMember activates membership in an existing conversation. Reactivating a
// former member is indistinguishable from a fresh join.
func (s *ConversationService) AddMember(ctx context.Context, conversationID, userID string) error {
	return s.convRepo.UpsertMember(ctx, conversationID, userID)
}

// JoinClanMember activates the user's membership in the clan's conversation,
// creating the conversation first when the join event arrived before the
// clan-created one.
func (s *ConversationService) JoinClanMember(ctx context.Context, clanID, userID string) error {
	conv, err := s.EnsureClan(ctx, clanID, "")
	if err != nil {
		return err
	}
	return s.convRepo.UpsertMember(ctx, conv.ID, userID)
}

// RemoveClanMember deactivates the user's membership row. When the clan's
// conversation does not exist yet there is nothing to deactivate.
func (s *ConversationService) RemoveClanMember(ctx context.Context, clanID, userID string) error {
	conv, err := s.convRepo.FindByClanID(ctx, clanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolver: lookup clan %s: %w", clanID, err)
	}
	return s.convRepo.DeactivateMember(ctx, conv.ID, userID)
}

// RequireActiveMember verifies the user currently belongs to the
// conversation, returning ErrNotAMember otherwise.
func (s *ConversationService) RequireActiveMember(ctx context.Context, conversationID, userID string) error {
	member, err := s.convRepo.FindMember(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAMember
		}
		return fmt.Errorf("resolver: membership check (conversation %s, user %s): %w", conversationID, userID, err)
	}
	if !member.Active() {
		return ErrNotAMember
	}
	return nil
}

// ListMine returns the user's active conversations, most recent first.
func (s *ConversationService) ListMine(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.convRepo.ListForUser(ctx, userID)
}
