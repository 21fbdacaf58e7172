package eventbus

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"garbage-classifier/core/event"
)

// subscription represents a single event subscription.
type subscription struct {
	id      string
	seq     uint64
	handler EventHandler
	names   map[string]struct{} // nil means subscribe to all events
}

func (s *subscription) wants(name string) bool {
	if s.names == nil {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// syncEventBus delivers events inline, in subscription order.
type syncEventBus struct {
	subscriptions map[string]*subscription
	mu            sync.RWMutex
	closed        atomic.Bool
	nextID        atomic.Uint64
	logger        *slog.Logger
}

// New creates a new synchronous EventBus.
func New(logger *slog.Logger) EventBus {
	if logger == nil {
		logger = slog.Default()
	}

	return &syncEventBus{
		subscriptions: make(map[string]*subscription),
		logger:        logger,
	}
}

// Publish publishes an event to all subscribers.
func (b *syncEventBus) Publish(e event.Event) {
	if b.closed.Load() {
		return
	}
	b.deliverEvent(e)
}

// Subscribe subscribes to all events.
func (b *syncEventBus) Subscribe(handler EventHandler) string {
	return b.subscribe(nil, handler)
}

// SubscribeTo subscribes to the named events only.
func (b *syncEventBus) SubscribeTo(handler EventHandler, names ...string) string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return b.subscribe(set, handler)
}

func (b *syncEventBus) subscribe(names map[string]struct{}, handler EventHandler) string {
	seq := b.nextID.Add(1)
	id := fmt.Sprintf("sub-%d", seq)

	b.mu.Lock()
	b.subscriptions[id] = &subscription{
		id:      id,
		seq:     seq,
		handler: handler,
		names:   names,
	}
	b.mu.Unlock()

	return id
}

// Unsubscribe removes a subscription by its ID.
func (b *syncEventBus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	delete(b.subscriptions, subscriptionID)
	b.mu.Unlock()
}

// Close shuts down the event bus.
func (b *syncEventBus) Close() {
	if b.closed.Swap(true) {
		return
	}

	b.mu.Lock()
	b.subscriptions = make(map[string]*subscription)
	b.mu.Unlock()
}

// deliverEvent delivers an event to all matching subscribers.
func (b *syncEventBus) deliverEvent(e event.Event) {
	name := e.EventName()

	b.mu.RLock()
	// Copy subscriptions so handlers may subscribe or unsubscribe
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		if sub.wants(name) {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	for _, sub := range subs {
		// One bad handler must not starve the others
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("Event handler panicked", "event", name, "subscription", sub.id, "panic", r)
				}
			}()
			sub.handler(e)
		}()
	}
}
