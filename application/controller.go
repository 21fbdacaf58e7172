// Package application provides the application layer that executes user commands.
package application

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"garbage-classifier/core/command"
	"garbage-classifier/core/event"
	"garbage-classifier/core/eventbus"
	"garbage-classifier/core/state"
	"garbage-classifier/domain/label"
	"garbage-classifier/domain/prediction"
	"garbage-classifier/infrastructure/imageproc"
)

// ErrNoImage is returned by Predict when nothing is loaded.
var ErrNoImage = errors.New("no image loaded")

// Notice shown when predicting before loading.
const (
	NoticeTitle   = "Info"
	NoticeNoImage = "Load image first."
)

// Classifier produces one score per label for a preprocessed image.
type Classifier interface {
	Classify(t *imageproc.Tensor) ([]float32, error)
}

// Preprocessor converts an image file into model input.
type Preprocessor interface {
	Load(path string) (*imageproc.Tensor, error)
}

// ThumbnailFunc decodes path into an image sized for display.
type ThumbnailFunc func(path string) (image.Image, error)

// Controller owns the application state and executes commands against it.
// All commands run synchronously on the caller's goroutine.
type Controller struct {
	// State
	state     state.AppState
	imagePath string
	thumbnail image.Image
	result    *prediction.Result
	mu        sync.RWMutex

	// Dependencies
	eventBus     eventbus.EventBus
	classifier   Classifier
	preprocessor Preprocessor
	thumbnailer  ThumbnailFunc
	labels       *label.Set
	topK         int
	logger       *slog.Logger
}

// ControllerConfig holds configuration for the Controller.
type ControllerConfig struct {
	EventBus     eventbus.EventBus
	Classifier   Classifier
	Preprocessor Preprocessor
	Labels       *label.Set
	// Thumbnailer defaults to decoding and fitting into 900x650.
	Thumbnailer ThumbnailFunc
	// TopK is how many ranked classes each result carries; minimum 1.
	TopK   int
	Logger *slog.Logger
}

// NewController creates a new controller in the Idle state.
func NewController(cfg *ControllerConfig) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Thumbnailer == nil {
		cfg.Thumbnailer = FitThumbnail(900, 650)
	}
	if cfg.TopK < 1 {
		cfg.TopK = 1
	}

	return &Controller{
		state:        state.StateIdle,
		eventBus:     cfg.EventBus,
		classifier:   cfg.Classifier,
		preprocessor: cfg.Preprocessor,
		thumbnailer:  cfg.Thumbnailer,
		labels:       cfg.Labels,
		topK:         cfg.TopK,
		logger:       cfg.Logger,
	}
}

// FitThumbnail returns a ThumbnailFunc that fits images within maxW x maxH.
func FitThumbnail(maxW, maxH int) ThumbnailFunc {
	return func(path string) (image.Image, error) {
		img, err := imageproc.Open(path)
		if err != nil {
			return nil, err
		}
		return imageproc.Thumbnail(img, maxW, maxH), nil
	}
}

// Dispatch executes a command.
func (c *Controller) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	case *command.LoadImage:
		return c.handleLoadImage(cmd)
	case *command.Predict:
		return c.handlePredict()
	case *command.Reset:
		return c.handleReset()
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
}

// State returns the current state.
func (c *Controller) State() state.AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ImagePath returns the selected image path, or "" when Idle.
func (c *Controller) ImagePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imagePath
}

// Thumbnail returns the displayed image, or nil when Idle.
func (c *Controller) Thumbnail() image.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thumbnail
}

// LastResult returns the displayed prediction, or nil.
func (c *Controller) LastResult() *prediction.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

func (c *Controller) handleLoadImage(cmd *command.LoadImage) error {
	if cmd.Cancelled() {
		c.logger.Debug("Image selection cancelled", "state", c.State())
		return nil
	}

	thumb, err := c.thumbnailer(cmd.Path)
	if err != nil {
		c.logger.Warn("Failed to load image", "path", cmd.Path, "error", err)
		c.publish(event.NewOperationFailed(cmd.CommandName(), err))
		return err
	}

	c.mu.Lock()
	c.imagePath = cmd.Path
	c.thumbnail = thumb
	c.result = nil
	changed, err := c.transitionLocked(state.StateLoaded)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.logger.Info("Image loaded", "path", cmd.Path, "size", thumb.Bounds().Size())
	c.publish(event.NewImageLoaded(cmd.Path, thumb))
	c.publish(changed...)
	return nil
}

func (c *Controller) handlePredict() error {
	c.mu.RLock()
	cur, path := c.state, c.imagePath
	c.mu.RUnlock()

	if !cur.CanPredict() {
		c.logger.Info("Predict requested without an image")
		c.publish(event.NewNoticeRaised(NoticeTitle, NoticeNoImage))
		return ErrNoImage
	}

	result, err := c.classify(path)
	if err != nil {
		c.logger.Error("Prediction failed", "path", path, "error", err)
		c.publish(event.NewPredictionFailed(path, err))
		return err
	}

	c.mu.Lock()
	if c.imagePath != path {
		// Reset or another load happened while classifying
		c.mu.Unlock()
		return nil
	}
	c.result = result
	changed, err := c.transitionLocked(state.StatePredicted)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.logger.Info("Prediction completed", "path", path, "label", result.Label, "confidence", result.Confidence)
	c.publish(event.NewPredictionCompleted(path, result))
	c.publish(changed...)
	return nil
}

func (c *Controller) classify(path string) (*prediction.Result, error) {
	tensor, err := c.preprocessor.Load(path)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	scores, err := c.classifier.Classify(tensor)
	if err != nil {
		return nil, err
	}
	return prediction.Decide(scores, c.labels, c.topK)
}

func (c *Controller) handleReset() error {
	c.mu.Lock()
	c.imagePath = ""
	c.thumbnail = nil
	c.result = nil
	changed, err := c.transitionLocked(state.StateIdle)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.logger.Info("Reset")
	c.publish(&event.ImageCleared{})
	c.publish(changed...)
	return nil
}

// transitionLocked moves to target and returns the StateChanged event to publish, if any.
// Caller must hold c.mu.
func (c *Controller) transitionLocked(target state.AppState) ([]event.Event, error) {
	from := c.state
	if !from.CanTransitionTo(target) {
		return nil, state.NewTransitionError(from, target, fmt.Sprintf("allowed: %v", from.ValidTransitions()))
	}
	c.state = target
	if from == target {
		return nil, nil
	}
	return []event.Event{event.NewStateChanged(from, target)}, nil
}

func (c *Controller) publish(events ...event.Event) {
	if c.eventBus == nil {
		return
	}
	for _, e := range events {
		c.eventBus.Publish(e)
	}
}
