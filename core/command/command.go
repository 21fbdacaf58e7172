// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// LoadImage selects an image file for classification.
// An empty Path means the user dismissed the file dialog.
type LoadImage struct {
	Path string
}

func NewLoadImage(path string) *LoadImage {
	return &LoadImage{Path: path}
}

func (c *LoadImage) CommandName() string {
	return "LoadImage"
}

// Cancelled reports whether the file selection was dismissed.
func (c *LoadImage) Cancelled() bool {
	return c.Path == ""
}

// Predict classifies the currently loaded image.
type Predict struct{}

func (c *Predict) CommandName() string {
	return "Predict"
}

// Reset clears the loaded image and any prediction.
type Reset struct{}

func (c *Reset) CommandName() string {
	return "Reset"
}
