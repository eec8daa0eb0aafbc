package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// MessageService owns message persistence, receipts, and room fan-out.
// Persistence completes before fan-out: a reader must never receive a
// message id that a concurrent read of storage cannot find.
type MessageService struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	receiptRepo repository.ReceiptRepository
	state       repository.StateRepository
	broadcaster RoomBroadcaster
	rateLimit   int
	rateWindow  time.Duration
	log         *logrus.Entry
}

// NewMessageService creates the service. rateLimit/rateWindow form the
// per-(user, conversation) send budget.
func NewMessageService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	receiptRepo repository.ReceiptRepository,
	state repository.StateRepository,
	broadcaster RoomBroadcaster,
	rateLimit int,
	rateWindow time.Duration,
) *MessageService {
	if convRepo == nil {
		panic("ConversationRepository cannot be nil for MessageService")
	}
	if msgRepo == nil {
		panic("MessageRepository cannot be nil for MessageService")
	}
	if receiptRepo == nil {
		panic("ReceiptRepository cannot be nil for MessageService")
	}
	if state == nil {
		panic("StateRepository cannot be nil for MessageService")
	}
	if broadcaster == nil {
		panic("RoomBroadcaster cannot be nil for MessageService")
	}
	if rateLimit <= 0 {
		rateLimit = 20
	}
	if rateWindow <= 0 {
		rateWindow = 5 * time.Second
	}
	return &MessageService{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		receiptRepo: receiptRepo,
		state:       state,
		broadcaster: broadcaster,
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
		log:         logrus.WithField("component", "message_service"),
	}
}

// requireActiveMember rejects callers whose membership row is absent or
// deactivated.
func (s *MessageService) requireActiveMember(ctx context.Context, conversationID, userID string) error {
	member, err := s.convRepo.FindMember(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAMember
		}
		return fmt.Errorf("message: membership check (conversation %s, user %s): %w", conversationID, userID, err)
	}
	if !member.Active() {
		return ErrNotAMember
	}
	return nil
}

// Send persists a text message and fans it out to the conversation's room.
// The returned message carries the server-assigned id and timestamp so the
// caller can ack the sender and reconcile optimistic temp ids.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if err := s.requireActiveMember(ctx, conversationID, senderID); err != nil {
		return nil, err
	}

	count, err := s.state.IncrementRate(ctx, fmt.Sprintf("send:%s:%s", senderID, conversationID), s.rateWindow)
	if err != nil {
		return nil, fmt.Errorf("message: rate check (conversation %s, user %s): %w", conversationID, senderID, err)
	}
	if count > int64(s.rateLimit) {
		return nil, ErrRateLimited
	}

	sender := senderID
	body := content
	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       &sender,
		Kind:           domain.MessageText,
		Content:        &body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.msgRepo.Save(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.convRepo.Touch(ctx, conversationID); err != nil {
		s.log.WithError(err).WithField("conversation_id", conversationID).Warn("Failed to touch conversation")
	}

	// Delivered receipts for the other active members, duplicates skipped.
	memberIDs, err := s.convRepo.ListActiveMemberIDs(ctx, conversationID)
	if err != nil {
		s.log.WithError(err).WithField("conversation_id", conversationID).Warn("Failed to list members for delivery receipts")
	} else {
		others := make([]string, 0, len(memberIDs))
		for _, id := range memberIDs {
			if id != senderID {
				others = append(others, id)
			}
		}
		if err := s.receiptRepo.CreateDelivered(ctx, msg.ID, others, msg.CreatedAt); err != nil {
			s.log.WithError(err).WithField("message_id", msg.ID).Warn("Failed to create delivered receipts")
		}
	}

	// Fan-out only after the message row is durable.
	if err := s.broadcaster.ToRoom(ctx, conversationID, "message.new", map[string]interface{}{
		"messageId":      msg.ID,
		"conversationId": conversationID,
		"senderId":       senderID,
		"kind":           msg.Kind,
		"content":        content,
		"createdAt":      msg.CreatedAt,
	}); err != nil {
		s.log.WithError(err).WithField("message_id", msg.ID).Error("Failed to broadcast message.new")
	}
	if err := s.broadcaster.ToRoom(ctx, conversationID, "receipt.delivered", map[string]interface{}{
		"messageId":      msg.ID,
		"conversationId": conversationID,
		"senderId":       senderID,
		"deliveredAt":    msg.CreatedAt,
	}); err != nil {
		s.log.WithError(err).WithField("message_id", msg.ID).Warn("Failed to broadcast receipt.delivered")
	}
	return msg, nil
}

// MarkRead upserts the reader's receipt at the given time and broadcasts
// receipt.read to the room. ReadAt never moves backward: a stale call is a
// silent no-op.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID string, at time.Time) error {
	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if err := s.requireActiveMember(ctx, msg.ConversationID, userID); err != nil {
		return err
	}

	existing, err := s.receiptRepo.Find(ctx, messageID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil && existing.ReadAt != nil && !at.After(*existing.ReadAt) {
		// Already read at a later time; nothing to advance.
		return nil
	}
	if err := s.receiptRepo.MarkRead(ctx, messageID, userID, at); err != nil {
		return err
	}

	if err := s.broadcaster.ToRoom(ctx, msg.ConversationID, "receipt.read", map[string]interface{}{
		"messageId":      messageID,
		"conversationId": msg.ConversationID,
		"userId":         userID,
		"readAt":         at,
	}); err != nil {
		s.log.WithError(err).WithField("message_id", messageID).Warn("Failed to broadcast receipt.read")
	}
	return nil
}

// History returns a page of messages, newest first. cursor, when non-empty,
// is the id of the oldest message from the previous page.
func (s *MessageService) History(ctx context.Context, conversationID, userID string, limit int, cursor string) ([]domain.Message, error) {
	if err := s.requireActiveMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	var before *time.Time
	if cursor != "" {
		cursorMsg, err := s.msgRepo.FindByID(ctx, cursor)
		if err != nil || cursorMsg.ConversationID != conversationID {
			return nil, ErrInvalidCursor
		}
		before = &cursorMsg.CreatedAt
	}
	return s.msgRepo.ListByConversation(ctx, conversationID, limit, before)
}
