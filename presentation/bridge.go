// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"image"
	"log/slog"
	"sync"

	"garbage-classifier/application"
	"garbage-classifier/core/command"
	"garbage-classifier/core/event"
	"garbage-classifier/core/eventbus"
	"garbage-classifier/core/state"
	"garbage-classifier/domain/prediction"
)

// UIEventBridge bridges UI events to the application layer and routes events back to UI.
// Events are delivered on the goroutine that issued the command, which is the UI thread.
type UIEventBridge struct {
	controller *application.Controller
	eventBus   eventbus.EventBus
	logger     *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	subscriptionID string
}

// routedEvents lists the events handleEvent forwards to UICallbacks.
var routedEvents = []string{
	"StateChanged",
	"ImageLoaded",
	"ImageCleared",
	"PredictionCompleted",
	"PredictionFailed",
	"NoticeRaised",
	"OperationFailed",
}

// UICallbacks contains callbacks for UI updates.
type UICallbacks struct {
	OnStateChanged func(oldState, newState state.AppState)

	// Image events
	OnImageLoaded  func(path string, thumb image.Image)
	OnImageCleared func()

	// Prediction events
	OnPredictionCompleted func(path string, result *prediction.Result)
	OnPredictionFailed    func(path string, err error)

	// User feedback
	OnNotice          func(title, message string)
	OnOperationFailed func(operation string, err error)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Controller *application.Controller
	EventBus   eventbus.EventBus
	Logger     *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		controller: cfg.Controller,
		eventBus:   cfg.EventBus,
		logger:     cfg.Logger,
		callbacks:  &UICallbacks{},
	}

	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.SubscribeTo(b.handleEvent, routedEvents...)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

// LoadImage selects an image; an empty path means the dialog was cancelled.
func (b *UIEventBridge) LoadImage(path string) error {
	return b.controller.Dispatch(command.NewLoadImage(path))
}

// Predict classifies the loaded image.
func (b *UIEventBridge) Predict() error {
	return b.controller.Dispatch(&command.Predict{})
}

// Reset clears the image and result.
func (b *UIEventBridge) Reset() error {
	return b.controller.Dispatch(&command.Reset{})
}

// State returns the current application state.
func (b *UIEventBridge) State() state.AppState {
	if b == nil || b.controller == nil {
		return state.StateIdle
	}
	return b.controller.State()
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}

	switch evt := e.(type) {
	case *event.StateChanged:
		if callbacks.OnStateChanged != nil {
			callbacks.OnStateChanged(evt.OldState, evt.NewState)
		}

	case *event.ImageLoaded:
		if callbacks.OnImageLoaded != nil {
			callbacks.OnImageLoaded(evt.Path, evt.Thumbnail)
		}

	case *event.ImageCleared:
		if callbacks.OnImageCleared != nil {
			callbacks.OnImageCleared()
		}

	case *event.PredictionCompleted:
		if callbacks.OnPredictionCompleted != nil {
			callbacks.OnPredictionCompleted(evt.Path, evt.Result)
		}

	case *event.PredictionFailed:
		if callbacks.OnPredictionFailed != nil {
			callbacks.OnPredictionFailed(evt.Path, evt.Error)
		}

	case *event.NoticeRaised:
		if callbacks.OnNotice != nil {
			callbacks.OnNotice(evt.Title, evt.Message)
		}

	case *event.OperationFailed:
		if callbacks.OnOperationFailed != nil {
			callbacks.OnOperationFailed(evt.Operation, evt.Error)
		}

	default:
		b.logger.Debug("Unhandled event", "event", e.EventName())
	}
}
