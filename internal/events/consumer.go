package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
)

// HandlerFunc reacts to one event. It must be safe to re-run with the same
// event any number of times, and safe to run before a logically-prior event
// for the same aggregate has arrived.
type HandlerFunc func(ctx context.Context, evt *domain.Event) error

// Consumer subscribes to the shared event channel and dispatches each event
// by type through an explicit registration table built at startup. Unknown
// types are ignored; malformed payloads are logged and dropped; a failing
// handler is logged with the offending event id and type and the message is
// considered consumed (no automatic retry), so one poison message never
// blocks the subscriber.
type Consumer struct {
	bus      Bus
	channel  string
	handlers map[string]HandlerFunc
	log      *logrus.Entry

	mu      sync.Mutex
	sub     Subscription
	done    chan struct{}
	started bool
}

// NewConsumer creates an empty consumer; register handlers before Start.
func NewConsumer(bus Bus, channel string) *Consumer {
	if bus == nil {
		panic("Bus cannot be nil for Consumer")
	}
	if channel == "" {
		panic("event channel cannot be empty for Consumer")
	}
	return &Consumer{
		bus:      bus,
		channel:  channel,
		handlers: make(map[string]HandlerFunc),
		log:      logrus.WithField("component", "event_consumer"),
	}
}

// Handle registers the reaction for one event type. Registration happens at
// startup, before Start; later calls would race the dispatch loop.
func (c *Consumer) Handle(eventType string, h HandlerFunc) {
	if h == nil {
		panic("handler cannot be nil for Consumer")
	}
	c.handlers[eventType] = h
}

// Start subscribes and launches the dispatch loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	sub, err := c.bus.Subscribe(ctx, c.channel)
	if err != nil {
		return err
	}
	c.sub = sub
	c.done = make(chan struct{})
	c.started = true
	go c.run(sub)
	c.log.WithField("channel", c.channel).Info("Event consumer subscribed")
	return nil
}

// Stop closes the subscription and waits for the dispatch loop to drain.
func (c *Consumer) Stop() {
	c.mu.Lock()
	sub, done, started := c.sub, c.done, c.started
	c.started = false
	c.mu.Unlock()
	if !started {
		return
	}
	_ = sub.Close()
	<-done
	c.log.Info("Event consumer stopped")
}

func (c *Consumer) run(sub Subscription) {
	defer close(c.done)
	for msg := range sub.Messages() {
		c.dispatch(msg.Payload)
	}
}

// dispatch processes one raw message. Events are processed one at a time per
// subscriber connection; concurrency comes from running multiple service
// replicas, which the idempotent reactions tolerate.
func (c *Consumer) dispatch(payload []byte) {
	var evt domain.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.log.WithError(err).WithField("payload_size", len(payload)).Warn("Dropping malformed event payload")
		return
	}
	handler, ok := c.handlers[evt.Type]
	if !ok {
		// Forward-compatible: newer core versions may publish types this
		// build does not know yet.
		c.log.WithField("event_type", evt.Type).Debug("Ignoring unknown event type")
		return
	}

	logCtx := c.log.WithFields(logrus.Fields{
		"event_id":   evt.ID,
		"event_type": evt.Type,
	})
	defer func() {
		if r := recover(); r != nil {
			logCtx.Errorf("Event handler panicked: %v", r)
		}
	}()
	if err := handler(context.Background(), &evt); err != nil {
		// The message is still consumed: the blast radius is one missing
		// side effect, recoverable by replaying from an operational log.
		logCtx.WithError(err).Error("Event handler failed")
		return
	}
	logCtx.Debug("Event handled")
}
