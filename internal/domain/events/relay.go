// internal/domain/events/relay.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRelay mirrors events between storefront instances over Redis pub/sub.
// Delivery is best-effort: a lost message only delays a view until its next
// reload.
type RedisRelay struct {
	client  *redis.Client
	channel string
	bus     *Bus
	logger  *logrus.Logger
}

// NewRedisRelay creates a relay and registers it as a forwarder on bus
func NewRedisRelay(client *redis.Client, channel string, bus *Bus, logger *logrus.Logger) *RedisRelay {
	relay := &RedisRelay{
		client:  client,
		channel: channel,
		bus:     bus,
		logger:  logger,
	}
	bus.AddForwarder(relay)
	return relay
}

// Forward publishes events that originated in this process
func (r *RedisRelay) Forward(ctx context.Context, evt Event) {
	if evt.Origin != r.bus.Origin() {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to encode event for relay")
		return
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.WithError(err).WithField("topic", evt.Topic).Warn("Failed to relay event")
	}
}

// Run consumes events from other instances until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	r.logger.WithField("channel", r.channel).Info("📡 Event relay subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		r.logger.WithError(err).Debug("Ignoring malformed relayed event")
		return
	}
	if evt.Origin == r.bus.Origin() || evt.Visitor == "" {
		return
	}
	r.bus.Deliver(evt)
}
