// Package state defines the application state machine.
package state

import "fmt"

// AppState represents what the window currently shows.
type AppState int

const (
	// StateIdle means no image is loaded.
	StateIdle AppState = iota
	// StateLoaded means an image is selected but not yet classified.
	StateLoaded
	// StatePredicted means a prediction for the loaded image is displayed.
	StatePredicted
)

// String returns the string representation of the state.
func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoaded:
		return "Loaded"
	case StatePredicted:
		return "Predicted"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[AppState][]AppState{
	StateIdle:      {StateLoaded, StateIdle},
	StateLoaded:    {StateLoaded, StatePredicted, StateIdle},
	StatePredicted: {StateLoaded, StatePredicted, StateIdle},
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s AppState) CanTransitionTo(target AppState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s AppState) ValidTransitions() []AppState {
	return validTransitions[s]
}

// HasImage returns true if an image is selected.
func (s AppState) HasImage() bool {
	return s == StateLoaded || s == StatePredicted
}

// CanPredict returns true if a prediction can run in this state.
func (s AppState) CanPredict() bool {
	return s.HasImage()
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   AppState
	To     AppState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to AppState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
