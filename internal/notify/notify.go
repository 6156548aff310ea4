// Package notify defines the change-notification contract between the order
// core and its UI surfaces, plus two implementations: an in-process Hub and
// a RabbitMQ fanout broadcaster.
//
// Events are re-fetch signals, never payload carriers: a consumer that
// receives one is expected to reload the affected order from storage.
package notify

import (
	"context"
	"sync"
)

// TopicOrdersChanged fires on any order, item or table mutation.
const TopicOrdersChanged = "orders_changed"

// Event is a minimal change signal.
type Event struct {
	Topic   string `json:"topic"`
	OrderID string `json:"order_id,omitempty"`
}

// Broadcaster publishes change events.
type Broadcaster interface {
	Publish(ctx context.Context, e Event) error
}

// Handler consumes a change event.
type Handler func(e Event)

// Subscriber registers handlers for a topic. Subscribe returns an
// unsubscribe function; callers own the subscription lifetime, there is no
// global registry.
type Subscriber interface {
	Subscribe(topic string, fn Handler) (unsubscribe func())
}

// Hub is a synchronous in-process Broadcaster and Subscriber. It backs
// single-process deployments and substitutes for the broker in tests.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]Handler
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]Handler)}
}

// Publish delivers the event synchronously to every handler subscribed to
// its topic.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs[e.Topic]))
	for _, fn := range h.subs[e.Topic] {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
	return nil
}

// Subscribe registers fn for the topic and returns its unsubscribe function.
func (h *Hub) Subscribe(topic string, fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]Handler)
	}
	id := h.next
	h.next++
	h.subs[topic][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[topic], id)
	}
}
