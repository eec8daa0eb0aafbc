package events

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// ConversationResolver is the slice of the conversation service the reactor
// needs: race-safe ensure/activate/deactivate operations.
type ConversationResolver interface {
	EnsureDM(ctx context.Context, userAID, userBID string) (*domain.Conversation, error)
	EnsureClan(ctx context.Context, clanID, leaderID string) (*domain.Conversation, error)
	JoinClanMember(ctx context.Context, clanID, userID string) error
	RemoveClanMember(ctx context.Context, clanID, userID string) error
}

// NotificationCreator creates durable notifications idempotently per causing
// event, pushing them live when the user is connected.
type NotificationCreator interface {
	CreateOnce(ctx context.Context, userID string, typ domain.NotificationType, eventID string, payload interface{}) (bool, error)
}

// BlockChecker asks the core service whether either user blocks the other.
type BlockChecker interface {
	AnyBlocked(ctx context.Context, userAID, userBID string) (bool, error)
}

// MembershipChecker asks the core service whether a user currently stands
// as an active member of a clan.
type MembershipChecker interface {
	ClanMemberActive(ctx context.Context, clanID, userID string) (bool, error)
}

// LivePusher delivers a realtime frame to a user's live connections on
// whichever gateway instance holds them.
type LivePusher interface {
	ToUser(ctx context.Context, userID, event string, payload interface{}) error
}

// PresenceChecker reports whether a fresh presence marker exists.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// CoreEventReactor owns the messaging-side reactions to core domain events.
// Every reaction is idempotent and order-tolerant: duplicate deliveries and
// a "member joined" arriving before its "clan created" both resolve to the
// same end state.
type CoreEventReactor struct {
	resolver      ConversationResolver
	notifications NotificationCreator
	blocks        BlockChecker
	membership    MembershipChecker
	pusher        LivePusher
	presence      PresenceChecker
	log           *logrus.Entry
}

// NewCoreEventReactor creates the reactor.
func NewCoreEventReactor(
	resolver ConversationResolver,
	notifications NotificationCreator,
	blocks BlockChecker,
	membership MembershipChecker,
	pusher LivePusher,
	presence PresenceChecker,
) *CoreEventReactor {
	if resolver == nil {
		panic("ConversationResolver cannot be nil for CoreEventReactor")
	}
	if notifications == nil {
		panic("NotificationCreator cannot be nil for CoreEventReactor")
	}
	if blocks == nil {
		panic("BlockChecker cannot be nil for CoreEventReactor")
	}
	if membership == nil {
		panic("MembershipChecker cannot be nil for CoreEventReactor")
	}
	if pusher == nil {
		panic("LivePusher cannot be nil for CoreEventReactor")
	}
	if presence == nil {
		panic("PresenceChecker cannot be nil for CoreEventReactor")
	}
	return &CoreEventReactor{
		resolver:      resolver,
		notifications: notifications,
		blocks:        blocks,
		membership:    membership,
		pusher:        pusher,
		presence:      presence,
		log:           logrus.WithField("component", "core_event_reactor"),
	}
}

// Register wires every reaction into the consumer's dispatch table. This is
// the single place event types bind to handlers; no runtime reflection.
func (r *CoreEventReactor) Register(c *Consumer) {
	c.Handle(domain.EventFollowCreated, r.onFollowCreated)
	c.Handle(domain.EventFollowMutual, r.onFollowMutual)
	c.Handle(domain.EventClanCreated, r.onClanCreated)
	c.Handle(domain.EventClanMemberJoined, r.onClanMemberJoined)
	c.Handle(domain.EventClanMemberLeft, r.onClanMemberLeft)
	c.Handle(domain.EventClanMemberBanned, r.onClanMemberBanned)
}

// onFollowCreated creates a FOLLOW_CREATED notification for the followee.
// No conversation side effect.
func (r *CoreEventReactor) onFollowCreated(ctx context.Context, evt *domain.Event) error {
	var data domain.FollowCreatedData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}
	_, err := r.notifications.CreateOnce(ctx, data.FolloweeID, domain.NotificationFollowCreated, evt.ID, map[string]interface{}{
		"followerId": data.FollowerID,
	})
	return err
}

// onFollowMutual ensures the DM conversation for the pair, notifies both
// sides, and pushes dm.ready to whichever side has a live connection.
func (r *CoreEventReactor) onFollowMutual(ctx context.Context, evt *domain.Event) error {
	var data domain.FollowMutualData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}

	blocked, err := r.blocks.AnyBlocked(ctx, data.UserAID, data.UserBID)
	if err != nil {
		return fmt.Errorf("reactor: block check for %s/%s: %w", data.UserAID, data.UserBID, err)
	}
	if blocked {
		r.log.WithField("event_id", evt.ID).Info("Skipping DM creation: pair is blocked")
		return nil
	}

	conv, err := r.resolver.EnsureDM(ctx, data.UserAID, data.UserBID)
	if err != nil {
		return err
	}

	pairs := []struct{ user, peer string }{
		{data.UserAID, data.UserBID},
		{data.UserBID, data.UserAID},
	}
	for _, p := range pairs {
		if _, err := r.notifications.CreateOnce(ctx, p.user, domain.NotificationMutualFollow, evt.ID, map[string]interface{}{
			"peerId":         p.peer,
			"conversationId": conv.ID,
		}); err != nil {
			return err
		}
		online, err := r.presence.IsOnline(ctx, p.user)
		if err != nil {
			r.log.WithError(err).WithField("user_id", p.user).Warn("Presence check failed, skipping dm.ready push")
			continue
		}
		if !online {
			continue
		}
		if err := r.pusher.ToUser(ctx, p.user, "dm.ready", map[string]interface{}{
			"conversationId": conv.ID,
			"peerId":         p.peer,
		}); err != nil {
			r.log.WithError(err).WithField("user_id", p.user).Warn("Failed to push dm.ready")
		}
	}
	return nil
}

// onClanCreated resolves the clan conversation and seeds the leader's
// membership.
func (r *CoreEventReactor) onClanCreated(ctx context.Context, evt *domain.Event) error {
	var data domain.ClanCreatedData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}
	_, err := r.resolver.EnsureClan(ctx, data.ClanID, data.LeaderID)
	return err
}

// onClanMemberJoined activates the member's row, lazily creating the
// conversation when this event beats clan.created. The core service is the
// source of truth for standing: a stale join delivered after a ban must not
// reactivate the row, so membership is confirmed before the upsert.
func (r *CoreEventReactor) onClanMemberJoined(ctx context.Context, evt *domain.Event) error {
	var data domain.ClanMemberData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}
	active, err := r.membership.ClanMemberActive(ctx, data.ClanID, data.UserID)
	if err != nil {
		return fmt.Errorf("reactor: membership check for %s in %s: %w", data.UserID, data.ClanID, err)
	}
	if !active {
		r.log.WithFields(logrus.Fields{
			"event_id": evt.ID,
			"clan_id":  data.ClanID,
			"user_id":  data.UserID,
		}).Info("Skipping member activation: core reports no active membership")
		return nil
	}
	return r.resolver.JoinClanMember(ctx, data.ClanID, data.UserID)
}

func (r *CoreEventReactor) onClanMemberLeft(ctx context.Context, evt *domain.Event) error {
	var data domain.ClanMemberData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}
	return r.resolver.RemoveClanMember(ctx, data.ClanID, data.UserID)
}

func (r *CoreEventReactor) onClanMemberBanned(ctx context.Context, evt *domain.Event) error {
	var data domain.ClanMemberData
	if err := evt.DecodeData(&data); err != nil {
		return fmt.Errorf("reactor: decode %s: %w", evt.Type, err)
	}
	return r.resolver.RemoveClanMember(ctx, data.ClanID, data.UserID)
}
