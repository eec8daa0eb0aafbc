package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// NotificationService creates durable notifications exactly once per causing
// event and pushes them live when the user has a connection somewhere in the
// cluster.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	state       repository.StateRepository
	broadcaster RoomBroadcaster
	log         *logrus.Entry
}

// NewNotificationService creates the service.
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	state repository.StateRepository,
	broadcaster RoomBroadcaster,
) *NotificationService {
	if notifRepo == nil {
		panic("NotificationRepository cannot be nil for NotificationService")
	}
	if state == nil {
		panic("StateRepository cannot be nil for NotificationService")
	}
	if broadcaster == nil {
		panic("RoomBroadcaster cannot be nil for NotificationService")
	}
	return &NotificationService{
		notifRepo:   notifRepo,
		state:       state,
		broadcaster: broadcaster,
		log:         logrus.WithField("component", "notification_service"),
	}
}

// CreateOnce persists the notification unless the same event already
// produced one for this user, then pushes notification.new to the user's
// live connections. Returns false when the duplicate was absorbed.
func (s *NotificationService) CreateOnce(ctx context.Context, userID string, typ domain.NotificationType, eventID string, payload interface{}) (bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("notification: marshal payload for user %s: %w", userID, err)
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Type:      typ,
		Payload:   string(raw),
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.notifRepo.CreateOnce(ctx, n)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	online, err := s.state.IsOnline(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("Presence check failed, skipping live push")
		return true, nil
	}
	if online {
		if err := s.broadcaster.ToUser(ctx, userID, "notification.new", map[string]interface{}{
			"id":        n.ID,
			"type":      n.Type,
			"payload":   json.RawMessage(raw),
			"createdAt": n.CreatedAt,
		}); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("Failed to push notification.new")
		}
	}
	return true, nil
}

// List returns the user's most recent notifications.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID, limit)
}

// MarkRead records the user reading one notification. Read state is
// user-owned: the id must belong to userID for anything to change.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notifRepo.MarkRead(ctx, id, userID, time.Now().UTC())
}

// SweepRead deletes read notifications older than retention. Called by the
// periodic worker task.
func (s *NotificationService) SweepRead(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.notifRepo.DeleteReadBefore(ctx, cutoff)
}
