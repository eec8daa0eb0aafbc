package events

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Message is one raw delivery from the bus.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription is a live feed of bus messages. Close stops the feed and
// releases the underlying connection.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Bus is the cross-service pub/sub primitive. Delivery is at-least-once,
// unordered across producers, with no replay of messages published before a
// subscriber connected. The same primitive backs both the domain-event
// channel and the gateway's room relay.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
	PSubscribe(ctx context.Context, patterns ...string) (Subscription, error)
	Close() error
}

// RedisBus implements Bus on Redis pub/sub. It is an explicitly constructed
// value injected into every component that needs it; its lifecycle is tied
// to process startup/shutdown.
type RedisBus struct {
	client *redis.Client
	log    *logrus.Entry
}

// NewRedisBus creates the bus around an already-connected client.
func NewRedisBus(client *redis.Client) *RedisBus {
	if client == nil {
		panic("redis client cannot be nil for RedisBus")
	}
	return &RedisBus{
		client: client,
		log:    logrus.WithField("component", "bus"),
	}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("bus: failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channels...)
	// Wait for the subscription to be confirmed so callers do not publish
	// into the void right after Subscribe returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("bus: failed to subscribe to %v: %w", channels, err)
	}
	return newRedisSubscription(pubsub), nil
}

func (b *RedisBus) PSubscribe(ctx context.Context, patterns ...string) (Subscription, error) {
	pubsub := b.client.PSubscribe(ctx, patterns...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("bus: failed to pattern-subscribe to %v: %w", patterns, err)
	}
	return newRedisSubscription(pubsub), nil
}

// Close is a no-op for the shared client; the owning App closes the client
// itself during shutdown.
func (b *RedisBus) Close() error {
	return nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan Message
}

func newRedisSubscription(pubsub *redis.PubSub) *redisSubscription {
	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan Message, 64),
	}
	go sub.pump()
	return sub
}

// pump converts go-redis messages into bus messages until the pubsub closes.
func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		s.out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}
	}
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
