package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/events"
)

// memoryBus is an in-process Bus for tests. Publish delivers synchronously
// into each matching subscription's buffer.
type memoryBus struct {
	mu   sync.Mutex
	subs []*memorySubscription
}

type memorySubscription struct {
	bus      *memoryBus
	channels []string
	patterns []string
	out      chan events.Message
	closed   bool
	mu       sync.Mutex
}

func newMemoryBus() *memoryBus {
	return &memoryBus{}
}

func (b *memoryBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.matches(channel) {
			sub.deliver(events.Message{Channel: channel, Payload: payload})
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(_ context.Context, channels ...string) (events.Subscription, error) {
	sub := &memorySubscription{bus: b, channels: channels, out: make(chan events.Message, 64)}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *memoryBus) PSubscribe(_ context.Context, patterns ...string) (events.Subscription, error) {
	sub := &memorySubscription{bus: b, patterns: patterns, out: make(chan events.Message, 64)}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *memoryBus) Close() error { return nil }

func (s *memorySubscription) matches(channel string) bool {
	for _, c := range s.channels {
		if c == channel {
			return true
		}
	}
	for _, p := range s.patterns {
		// Only trailing-star patterns are used in this codebase.
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasPrefix(channel, prefix) {
			return true
		}
	}
	return false
}

func (s *memorySubscription) deliver(msg events.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.out <- msg
}

func (s *memorySubscription) Messages() <-chan events.Message { return s.out }

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
	return nil
}

// collect waits until fn reports done or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestPublisher_EmitStampsEnvelope(t *testing.T) {
	bus := newMemoryBus()
	sub, err := bus.Subscribe(context.Background(), "test.events")
	require.NoError(t, err)
	pub := events.NewPublisher(bus, "test.events")

	evt, err := pub.Emit(context.Background(), domain.EventFollowCreated, domain.FollowCreatedData{
		FollowerID: "u1",
		FolloweeID: "u2",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, domain.EventSourceCore, evt.Source)
	assert.Equal(t, domain.EventFollowCreated, evt.Type)
	assert.False(t, evt.TS.IsZero())

	raw := <-sub.Messages()
	var decoded domain.Event
	require.NoError(t, json.Unmarshal(raw.Payload, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)

	var data domain.FollowCreatedData
	require.NoError(t, decoded.DecodeData(&data))
	assert.Equal(t, "u1", data.FollowerID)
	assert.Equal(t, "u2", data.FolloweeID)
}

func TestConsumer_DispatchesByType(t *testing.T) {
	bus := newMemoryBus()
	consumer := events.NewConsumer(bus, "test.events")
	pub := events.NewPublisher(bus, "test.events")

	var mu sync.Mutex
	var seen []string
	consumer.Handle(domain.EventClanCreated, func(_ context.Context, evt *domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, evt.ID)
		return nil
	})
	require.NoError(t, consumer.Start(context.Background()))
	defer consumer.Stop()

	evt, err := pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c1", LeaderID: "u1"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	})
	mu.Lock()
	assert.Equal(t, []string{evt.ID}, seen)
	mu.Unlock()
}

func TestConsumer_UnknownTypeIgnored(t *testing.T) {
	bus := newMemoryBus()
	consumer := events.NewConsumer(bus, "test.events")
	pub := events.NewPublisher(bus, "test.events")

	var handled int32
	var mu sync.Mutex
	consumer.Handle(domain.EventClanCreated, func(_ context.Context, _ *domain.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})
	require.NoError(t, consumer.Start(context.Background()))

	// A type this build does not know about must pass through silently.
	_, err := pub.Emit(context.Background(), "social.profile.updated", map[string]string{"userId": "u1"})
	require.NoError(t, err)
	// Followed by a known event, proving the loop survived.
	_, err = pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c2"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 1
	})
	consumer.Stop()
}

func TestConsumer_MalformedPayloadDropped(t *testing.T) {
	bus := newMemoryBus()
	consumer := events.NewConsumer(bus, "test.events")
	pub := events.NewPublisher(bus, "test.events")

	var mu sync.Mutex
	var handled int
	consumer.Handle(domain.EventClanCreated, func(_ context.Context, _ *domain.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})
	require.NoError(t, consumer.Start(context.Background()))

	require.NoError(t, bus.Publish(context.Background(), "test.events", []byte("{not json")))
	_, err := pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c3"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 1
	})
	consumer.Stop()
}

func TestConsumer_HandlerErrorConsumesMessage(t *testing.T) {
	// A failing handler must not block subsequent events.
	bus := newMemoryBus()
	consumer := events.NewConsumer(bus, "test.events")
	pub := events.NewPublisher(bus, "test.events")

	var mu sync.Mutex
	var calls int
	consumer.Handle(domain.EventClanCreated, func(_ context.Context, _ *domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("downstream unavailable")
		}
		return nil
	})
	require.NoError(t, consumer.Start(context.Background()))

	_, err := pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c4"})
	require.NoError(t, err)
	_, err = pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c5"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	})
	consumer.Stop()
}

func TestConsumer_PanickingHandlerDoesNotKillLoop(t *testing.T) {
	bus := newMemoryBus()
	consumer := events.NewConsumer(bus, "test.events")
	pub := events.NewPublisher(bus, "test.events")

	var mu sync.Mutex
	var calls int
	consumer.Handle(domain.EventClanCreated, func(_ context.Context, _ *domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			panic("boom")
		}
		return nil
	})
	require.NoError(t, consumer.Start(context.Background()))

	_, err := pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c6"})
	require.NoError(t, err)
	_, err = pub.Emit(context.Background(), domain.EventClanCreated, domain.ClanCreatedData{ClanID: "c7"})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	})
	consumer.Stop()
}
