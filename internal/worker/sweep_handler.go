package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
	"github.com/brainbattle-platform/brainbattle-clan/internal/tasks"
)

// defaultNotificationRetention applies when the task payload carries none.
const defaultNotificationRetention = 30 * 24 * time.Hour

// NotificationSweepHandler deletes read notifications that have aged out.
// The feed stays small without the hot path ever paying for cleanup.
type NotificationSweepHandler struct {
	notifications *service.NotificationService
}

// NewNotificationSweepHandler creates the handler.
func NewNotificationSweepHandler(notifications *service.NotificationService) *NotificationSweepHandler {
	if notifications == nil {
		panic("NotificationService cannot be nil for NotificationSweepHandler")
	}
	return &NotificationSweepHandler{notifications: notifications}
}

// ProcessTask implements asynq.Handler.
func (h *NotificationSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithFields(logrus.Fields{
		"component": "worker",
		"task_type": t.Type(),
	})

	retention := defaultNotificationRetention
	var payload tasks.NotificationSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err == nil && payload.Retention > 0 {
		retention = payload.Retention
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := h.notifications.SweepRead(sweepCtx, retention)
	if err != nil {
		logCtx.WithError(err).Error("Notification sweep failed")
		return err
	}
	logCtx.WithField("deleted", deleted).Info("Notification sweep completed")
	return nil
}
