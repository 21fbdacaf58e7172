// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

import "garbage-classifier/core/state"

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// StateChanged is published when the application state changes.
type StateChanged struct {
	OldState state.AppState
	NewState state.AppState
}

func NewStateChanged(oldState, newState state.AppState) *StateChanged {
	return &StateChanged{OldState: oldState, NewState: newState}
}

func (e *StateChanged) EventName() string {
	return "StateChanged"
}

// NoticeRaised is published when the user should be told something
// that is not an error, e.g. predicting before loading an image.
type NoticeRaised struct {
	Title   string
	Message string
}

func NewNoticeRaised(title, message string) *NoticeRaised {
	return &NoticeRaised{Title: title, Message: message}
}

func (e *NoticeRaised) EventName() string {
	return "NoticeRaised"
}

// OperationFailed is published when a command could not be completed.
type OperationFailed struct {
	Operation string
	Error     error
}

func NewOperationFailed(operation string, err error) *OperationFailed {
	return &OperationFailed{Operation: operation, Error: err}
}

func (e *OperationFailed) EventName() string {
	return "OperationFailed"
}
