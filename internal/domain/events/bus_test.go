package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
	"go.uber.org/goleak"
)

type recordingForwarder struct {
	events []Event
}

func (r *recordingForwarder) Forward(_ context.Context, evt Event) {
	r.events = append(r.events, evt)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBusDeliversToVisitorSubscribersOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	alice := bus.Subscribe("alice")
	aliceBadge := bus.Subscribe("alice")
	bob := bus.Subscribe("bob")
	defer alice.Close()
	defer aliceBadge.Close()
	defer bob.Close()

	bus.Publish(context.Background(), Event{Visitor: "alice", Topic: TopicCartUpdated})

	for _, sub := range []*Subscription{alice, aliceBadge} {
		evt := receive(t, sub)
		assert.Equal(t, TopicCartUpdated, evt.Topic)
		assert.Equal(t, bus.Origin(), evt.Origin)
		assert.False(t, evt.At.IsZero())
	}

	select {
	case evt := <-bob.C:
		t.Fatalf("bob received %v", evt)
	default:
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("v")
	assert.Equal(t, 1, bus.Subscribers("v"))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, bus.Subscribers("v"))
	_, ok := <-sub.C
	assert.False(t, ok)

	// publishing after close must not panic
	bus.Publish(context.Background(), Event{Visitor: "v", Topic: TopicThemeUpdated})
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("v")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultBufferSize*4; i++ {
			bus.Publish(context.Background(), Event{Visitor: "v", Topic: TopicCartUpdated})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	assert.Len(t, sub.C, defaultBufferSize)
}

func TestPublishForwardsLocalEvents(t *testing.T) {
	bus := NewBus()
	fwd := &recordingForwarder{}
	bus.AddForwarder(fwd)

	bus.Publish(context.Background(), Event{Visitor: "v", Topic: TopicSessionUpdated})
	bus.Deliver(Event{Visitor: "v", Topic: TopicSessionUpdated, Origin: "elsewhere"})

	require.Len(t, fwd.events, 1, "Deliver must not re-forward remote events")
	assert.Equal(t, bus.Origin(), fwd.events[0].Origin)
}

func TestRelayIgnoresOwnAndMalformedMessages(t *testing.T) {
	bus := NewBus()
	relay := &RedisRelay{bus: bus, logger: logger.Discard()}
	sub := bus.Subscribe("v")
	defer sub.Close()

	relay.handle(`{"visitor":"v","topic":"cart-updated","origin":"` + bus.Origin() + `"}`)
	relay.handle(`not json`)
	relay.handle(`{"visitor":"v","topic":"cart-updated","origin":"other-instance"}`)

	evt := receive(t, sub)
	assert.Equal(t, "other-instance", evt.Origin)
	assert.Len(t, sub.C, 0)
}
