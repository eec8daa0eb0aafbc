package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// Publisher stamps domain facts into event envelopes and publishes them on
// the shared channel. The call awaits the broker accepting the message; a
// broker-unavailable condition surfaces as a transient error and the caller
// decides whether the triggering business action still proceeds (consumers
// are idempotent and eventually consistent, so it usually does).
type Publisher struct {
	bus     Bus
	channel string
	log     *logrus.Entry
}

// NewPublisher creates the publisher for the given channel.
func NewPublisher(bus Bus, channel string) *Publisher {
	if bus == nil {
		panic("Bus cannot be nil for Publisher")
	}
	if channel == "" {
		panic("event channel cannot be empty for Publisher")
	}
	return &Publisher{
		bus:     bus,
		channel: channel,
		log:     logrus.WithField("component", "event_publisher"),
	}
}

// Emit constructs the envelope, publishes it and returns it. No ordering is
// guaranteed across event types; handlers tolerate reordering within a
// causal chain.
func (p *Publisher) Emit(ctx context.Context, eventType string, data interface{}) (*domain.Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("events: failed to marshal payload for %s: %w", eventType, err)
	}
	evt := &domain.Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		TS:     time.Now().UTC(),
		Source: domain.EventSourceCore,
		Data:   raw,
	}
	envelope, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("events: failed to marshal envelope for %s: %w", eventType, err)
	}
	if err := p.bus.Publish(ctx, p.channel, envelope); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"event_id":   evt.ID,
			"event_type": evt.Type,
		}).Error("Failed to publish event")
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"event_id":   evt.ID,
		"event_type": evt.Type,
	}).Debug("Event published")
	return evt, nil
}
