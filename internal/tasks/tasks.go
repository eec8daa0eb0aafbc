package tasks

import (
	"encoding/json"
	"time"
)

// Task type constants.
const (
	TypeNotificationSweep = "notification:sweep" // periodic read-notification cleanup
)

// NotificationSweepPayload configures one sweep run.
type NotificationSweepPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewNotificationSweepTask builds the serialized payload for a sweep task.
func NewNotificationSweepTask(retention time.Duration) ([]byte, error) {
	payload := NotificationSweepPayload{Retention: retention}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}
