package hub

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/events"
)

// RedisBroadcaster implements service.RoomBroadcaster on the same bus that
// carries domain events, so one pub/sub primitive serves both purposes.
// Every frame is published to a room or user channel; every gateway
// instance pattern-subscribes once and feeds its local hub, which is what
// makes fan-out correct behind a load balancer with no client affinity.
type RedisBroadcaster struct {
	bus       events.Bus
	hub       *Hub
	keyPrefix string
	log       *logrus.Entry

	mu  sync.Mutex
	sub events.Subscription
}

// NewRedisBroadcaster creates the broadcaster. keyPrefix namespaces the
// relay channels alongside the other Redis keys.
func NewRedisBroadcaster(bus events.Bus, hub *Hub, keyPrefix string) *RedisBroadcaster {
	if bus == nil {
		panic("Bus cannot be nil for RedisBroadcaster")
	}
	if hub == nil {
		panic("Hub cannot be nil for RedisBroadcaster")
	}
	if keyPrefix == "" {
		keyPrefix = "cc:"
	}
	return &RedisBroadcaster{
		bus:       bus,
		hub:       hub,
		keyPrefix: keyPrefix,
		log:       logrus.WithField("component", "room_broadcaster"),
	}
}

func (b *RedisBroadcaster) roomChannel(conversationID string) string {
	return b.keyPrefix + "room:" + conversationID
}

func (b *RedisBroadcaster) userChannel(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// Start subscribes to all room and user relay channels and pumps incoming
// frames into the local hub.
func (b *RedisBroadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return nil
	}
	sub, err := b.bus.PSubscribe(ctx, b.keyPrefix+"room:*", b.keyPrefix+"user:*")
	if err != nil {
		return err
	}
	b.sub = sub
	go b.relay(sub)
	b.log.Info("Room broadcaster subscribed to relay channels")
	return nil
}

// Close stops the relay subscription.
func (b *RedisBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub == nil {
		return nil
	}
	err := b.sub.Close()
	b.sub = nil
	return err
}

// relay routes each published frame to the local room or user it addresses.
func (b *RedisBroadcaster) relay(sub events.Subscription) {
	roomPrefix := b.keyPrefix + "room:"
	userPrefix := b.keyPrefix + "user:"
	for msg := range sub.Messages() {
		switch {
		case strings.HasPrefix(msg.Channel, roomPrefix):
			b.hub.DeliverToRoom(strings.TrimPrefix(msg.Channel, roomPrefix), msg.Payload)
		case strings.HasPrefix(msg.Channel, userPrefix):
			b.hub.DeliverToUser(strings.TrimPrefix(msg.Channel, userPrefix), msg.Payload)
		default:
			b.log.WithField("channel", msg.Channel).Warn("Relay frame on unexpected channel")
		}
	}
}

// ToRoom publishes a frame on the conversation's relay channel.
func (b *RedisBroadcaster) ToRoom(ctx context.Context, conversationID, event string, payload interface{}) error {
	frame, err := EncodeServerFrame(event, payload)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, b.roomChannel(conversationID), frame)
}

// ToUser publishes a frame on the user's relay channel.
func (b *RedisBroadcaster) ToUser(ctx context.Context, userID, event string, payload interface{}) error {
	frame, err := EncodeServerFrame(event, payload)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, b.userChannel(userID), frame)
}
