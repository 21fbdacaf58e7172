package event

import (
	"image"

	"garbage-classifier/domain/prediction"
)

// ImageLoaded is published when a new image has been selected.
type ImageLoaded struct {
	Path      string
	Thumbnail image.Image
}

func NewImageLoaded(path string, thumb image.Image) *ImageLoaded {
	return &ImageLoaded{Path: path, Thumbnail: thumb}
}

func (e *ImageLoaded) EventName() string {
	return "ImageLoaded"
}

// ImageCleared is published when the displayed image and result are removed.
type ImageCleared struct{}

func (e *ImageCleared) EventName() string {
	return "ImageCleared"
}

// PredictionCompleted is published when the loaded image has been classified.
type PredictionCompleted struct {
	Path   string
	Result *prediction.Result
}

func NewPredictionCompleted(path string, result *prediction.Result) *PredictionCompleted {
	return &PredictionCompleted{Path: path, Result: result}
}

func (e *PredictionCompleted) EventName() string {
	return "PredictionCompleted"
}

// PredictionFailed is published when preprocessing or inference fails.
type PredictionFailed struct {
	Path  string
	Error error
}

func NewPredictionFailed(path string, err error) *PredictionFailed {
	return &PredictionFailed{Path: path, Error: err}
}

func (e *PredictionFailed) EventName() string {
	return "PredictionFailed"
}
