package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// MigrateDB applies the schema for all messaging-side tables. The unique
// indexes on conversations.pair_key / conversations.clan_id and
// notifications.(user_id, event_id) are required for correctness, not just
// lookup speed.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Conversation{},
		&domain.ConversationMember{},
		&domain.Message{},
		&domain.Receipt{},
		&domain.Notification{},
	)
	if err != nil {
		return fmt.Errorf("setup: failed to migrate database: %w", err)
	}
	return nil
}
