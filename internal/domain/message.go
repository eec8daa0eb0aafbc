package domain

import "time"

// MessageKind is the message body type.
type MessageKind string

const (
	MessageText       MessageKind = "text"
	MessageAttachment MessageKind = "attachment"
	MessageSystem     MessageKind = "system"
)

// Message is append-only. Soft deletes set DeletedAt and clear Content; the
// row is never physically removed while receipts reference it.
type Message struct {
	ID             string      `gorm:"primaryKey;size:36"`
	ConversationID string      `gorm:"size:36;not null;index:idx_messages_conv_created,priority:1"`
	SenderID       *string     `gorm:"size:64"` // nil = system message
	Kind           MessageKind `gorm:"type:varchar(16);not null"`
	Content        *string     `gorm:"type:text"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index:idx_messages_conv_created,priority:2"`
	DeletedAt      *time.Time
}

// Receipt tracks delivery and read state per (message, user). At most one row
// per pair; ReadAt only ever advances forward in time.
type Receipt struct {
	MessageID   string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"primaryKey;size:64"`
	DeliveredAt *time.Time
	ReadAt      *time.Time
}
