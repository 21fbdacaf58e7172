// Package eventbus provides the event bus for publishing and subscribing to events.
package eventbus

import (
	"garbage-classifier/core/event"
)

// EventBus is the interface for the event bus.
type EventBus interface {
	// Publish publishes an event to all subscribers.
	// Handlers run on the caller's goroutine before Publish returns,
	// so a publisher on the UI thread delivers to the UI thread.
	Publish(e event.Event)

	// Subscribe subscribes to all events.
	// Returns a subscription ID that can be used to unsubscribe.
	Subscribe(handler EventHandler) string

	// SubscribeTo subscribes to events whose EventName is one of names.
	// Returns a subscription ID that can be used to unsubscribe.
	SubscribeTo(handler EventHandler, names ...string) string

	// Unsubscribe removes a subscription by its ID.
	Unsubscribe(subscriptionID string)

	// Close shuts down the event bus.
	// After Close is called, Publish will be a no-op.
	Close()
}

// EventHandler is a function that handles an event.
type EventHandler func(e event.Event)
