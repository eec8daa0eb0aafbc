package domain

import "time"

// NotificationType enumerates the durable notification categories.
type NotificationType string

const (
	NotificationFollowCreated NotificationType = "FOLLOW_CREATED"
	NotificationMutualFollow  NotificationType = "MUTUAL_FOLLOW"
	NotificationClanEvent     NotificationType = "CLAN_EVENT"
	NotificationSystem        NotificationType = "SYSTEM"
)

// Notification is a durable per-user record created at most once per causing
// event; the unique (user_id, event_id) index absorbs duplicate deliveries.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36"`
	UserID    string           `gorm:"size:64;not null;uniqueIndex:idx_notifications_user_event,priority:1;index:idx_notifications_user_created,priority:1"`
	EventID   string           `gorm:"size:36;not null;uniqueIndex:idx_notifications_user_event,priority:2"`
	Type      NotificationType `gorm:"type:varchar(32);not null"`
	Payload   string           `gorm:"type:text"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index:idx_notifications_user_created,priority:2"`
	ReadAt    *time.Time
}
