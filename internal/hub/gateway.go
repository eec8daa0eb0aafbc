package hub

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

// Gateway bundles what every connection needs: the local hub, the
// cluster-wide broadcaster and the services behind the five gateway
// operations. One Gateway serves all connections of the process.
type Gateway struct {
	hub           *Hub
	broadcaster   service.RoomBroadcaster
	conversations *service.ConversationService
	messages      *service.MessageService
	state         repository.StateRepository
	presenceTTL   time.Duration
	log           *logrus.Entry
}

// NewGateway creates the gateway.
func NewGateway(
	hub *Hub,
	broadcaster service.RoomBroadcaster,
	conversations *service.ConversationService,
	messages *service.MessageService,
	state repository.StateRepository,
	presenceTTL time.Duration,
) *Gateway {
	if hub == nil {
		panic("Hub cannot be nil for Gateway")
	}
	if broadcaster == nil {
		panic("RoomBroadcaster cannot be nil for Gateway")
	}
	if conversations == nil {
		panic("ConversationService cannot be nil for Gateway")
	}
	if messages == nil {
		panic("MessageService cannot be nil for Gateway")
	}
	if state == nil {
		panic("StateRepository cannot be nil for Gateway")
	}
	if presenceTTL <= 0 {
		presenceTTL = 120 * time.Second
	}
	return &Gateway{
		hub:           hub,
		broadcaster:   broadcaster,
		conversations: conversations,
		messages:      messages,
		state:         state,
		presenceTTL:   presenceTTL,
		log:           logrus.WithField("component", "gateway"),
	}
}

// Hub exposes the local hub, mainly for the broadcaster wiring.
func (g *Gateway) Hub() *Hub {
	return g.hub
}

// touchPresence refreshes the user's marker; failures are logged, never
// surfaced, since presence is advisory.
func (g *Gateway) touchPresence(ctx context.Context, userID string) {
	if err := g.state.TouchPresence(ctx, userID, g.presenceTTL); err != nil {
		g.log.WithError(err).WithField("user_id", userID).Warn("Failed to touch presence")
	}
}

// clearPresence drops the user's marker when their last local connection
// goes away, so readers see them offline before the TTL would expire.
func (g *Gateway) clearPresence(ctx context.Context, userID string) {
	if err := g.state.ClearPresence(ctx, userID); err != nil {
		g.log.WithError(err).WithField("user_id", userID).Warn("Failed to clear presence")
	}
}
