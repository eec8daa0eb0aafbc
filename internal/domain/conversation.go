package domain

import "time"

// ConversationKind distinguishes DM pairs from clan rooms.
type ConversationKind string

const (
	ConversationDM   ConversationKind = "dm"
	ConversationClan ConversationKind = "clan"
)

// Conversation is created lazily on the first qualifying event or internal
// call and never deleted; only its membership mutates.
// The unique indexes on ClanID and PairKey are load-bearing: the resolver's
// create-catch-duplicate-re-read race handling depends on them.
type Conversation struct {
	ID        string           `gorm:"primaryKey;size:36"`
	Kind      ConversationKind `gorm:"type:varchar(8);not null;index"`
	ClanID    *string          `gorm:"size:64;uniqueIndex:idx_conversations_clan"` // set iff Kind == clan
	PairKey   *string          `gorm:"size:191;uniqueIndex:idx_conversations_pair"` // set iff Kind == dm
	Title     string           `gorm:"size:191"`
	AvatarURL string           `gorm:"size:512"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime;index"`
}

// ConversationMember is one user's membership row in a conversation. A user
// is active iff LeftAt is nil; re-joining clears LeftAt instead of inserting
// a duplicate row.
type ConversationMember struct {
	ConversationID string     `gorm:"primaryKey;size:36"`
	UserID         string     `gorm:"primaryKey;size:64;index"`
	JoinedAt       time.Time  `gorm:"autoCreateTime"`
	LeftAt         *time.Time `gorm:"index"`
}

// Active reports whether the member currently belongs to the conversation.
func (m *ConversationMember) Active() bool {
	return m.LeftAt == nil
}
