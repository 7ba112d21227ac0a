// internal/domain/events/bus.go
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic names a kind of client-state change
type Topic string

const (
	TopicCartUpdated    Topic = "cart-updated"
	TopicSessionUpdated Topic = "session-updated"
	TopicThemeUpdated   Topic = "theme-updated"
)

// Event tells a visitor's mounted views that persisted state changed and
// should be re-read. It carries no payload on purpose: subscribers reload.
type Event struct {
	Visitor string    `json:"visitor"`
	Topic   Topic     `json:"topic"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
}

// Publisher broadcasts change events
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Forwarder receives every locally published event, e.g. to relay it to
// other storefront instances
type Forwarder interface {
	Forward(ctx context.Context, evt Event)
}

const defaultBufferSize = 16

// Bus fans change events out to the subscribers of one visitor
type Bus struct {
	origin     string
	bufferSize int

	mu         sync.RWMutex
	subs       map[string]map[*Subscription]struct{}
	forwarders []Forwarder
}

// NewBus creates a bus with a fresh origin id
func NewBus() *Bus {
	return &Bus{
		origin:     uuid.NewString(),
		bufferSize: defaultBufferSize,
		subs:       make(map[string]map[*Subscription]struct{}),
	}
}

// Origin identifies events published by this process
func (b *Bus) Origin() string {
	return b.origin
}

// AddForwarder registers a forwarder for locally published events
func (b *Bus) AddForwarder(f Forwarder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, f)
}

// Subscribe registers interest in a visitor's events. Callers must Close
// the subscription when the view goes away.
func (b *Bus) Subscribe(visitor string) *Subscription {
	ch := make(chan Event, b.bufferSize)
	sub := &Subscription{
		C:       ch,
		ch:      ch,
		bus:     b,
		visitor: visitor,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[visitor]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[visitor] = set
	}
	set[sub] = struct{}{}

	return sub
}

// Publish delivers the event to local subscribers and hands it to every
// forwarder. Callers publish only after their write has completed.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.Origin == "" {
		evt.Origin = b.origin
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	b.Deliver(evt)

	b.mu.RLock()
	forwarders := make([]Forwarder, len(b.forwarders))
	copy(forwarders, b.forwarders)
	b.mu.RUnlock()

	for _, f := range forwarders {
		f.Forward(ctx, evt)
	}
}

// Deliver hands the event to local subscribers only. A subscriber whose
// buffer is full misses the event; it still converges on its next reload.
func (b *Bus) Deliver(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[evt.Visitor] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for a visitor
func (b *Bus) Subscribers(visitor string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[visitor])
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[sub.visitor]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.visitor)
	}
	close(sub.ch)
}

// Subscription is one view's stream of change events
type Subscription struct {
	C <-chan Event

	ch      chan Event
	bus     *Bus
	visitor string
	once    sync.Once
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.unsubscribe(s)
	})
}
