// Package inference runs the waste classifier through ONNX Runtime.
package inference

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"garbage-classifier/domain/prediction"
	"garbage-classifier/infrastructure/imageproc"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrInputSize is returned when a tensor does not fit the model input.
var ErrInputSize = errors.New("input tensor size mismatch")

// Config describes how to open the model.
type Config struct {
	ModelPath string
	// SharedLibrary is the onnxruntime library path; empty uses the loader default.
	SharedLibrary string
	// InputName and OutputName select model tensors; empty picks the first one.
	InputName  string
	OutputName string
	// InputShape is the tensor shape fed to the model, NHWC.
	InputShape   []int64
	ApplySoftmax bool
}

// DefaultConfig returns the configuration for the bundled 224x224 model.
func DefaultConfig() *Config {
	return &Config{
		ModelPath:  "garbage.onnx",
		InputShape: []int64{1, 224, 224, 3},
	}
}

// ONNXClassifier owns one ONNX Runtime session with preallocated tensors.
type ONNXClassifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputName    string
	outputName   string
	softmax      bool
	logger       *slog.Logger

	mu sync.Mutex
}

// NewONNXClassifier initializes the runtime and loads the model.
func NewONNXClassifier(cfg *Config, logger *slog.Logger) (*ONNXClassifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.SharedLibrary != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibrary)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to inspect model %s: %w", cfg.ModelPath, err)
	}

	in, err := pickTensor(inputs, cfg.InputName)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("model input: %w", err)
	}
	out, err := pickTensor(outputs, cfg.OutputName)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("model output: %w", err)
	}
	if err := checkShape(in.Dimensions, cfg.InputShape); err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("model input %q: %w", in.Name, err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](concreteShape(out.Dimensions))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{in.Name}, []string{out.Name},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("Model loaded",
		"path", cfg.ModelPath,
		"input", in.Name, "input_shape", inputTensor.GetShape().String(),
		"output", out.Name, "output_shape", outputTensor.GetShape().String())

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputName:    in.Name,
		outputName:   out.Name,
		softmax:      cfg.ApplySoftmax,
		logger:       logger,
	}, nil
}

// OutputWidth returns the number of scores produced per image.
func (c *ONNXClassifier) OutputWidth() int {
	return int(c.outputTensor.GetShape().FlattenedSize())
}

// Classify runs the model on t and returns one probability per class.
func (c *ONNXClassifier) Classify(t *imageproc.Tensor) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := c.inputTensor.GetData()
	if len(t.Data) != len(in) {
		return nil, fmt.Errorf("%w: got %d values, model expects %d", ErrInputSize, len(t.Data), len(in))
	}
	copy(in, t.Data)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := c.outputTensor.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)

	if c.softmax {
		scores = prediction.Softmax(scores)
	}
	return scores, nil
}

// Close releases the session, tensors and runtime environment.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.session != nil {
		errs = append(errs, c.session.Destroy())
		c.session = nil
	}
	if c.inputTensor != nil {
		errs = append(errs, c.inputTensor.Destroy())
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		errs = append(errs, c.outputTensor.Destroy())
		c.outputTensor = nil
	}
	errs = append(errs, ort.DestroyEnvironment())
	return errors.Join(errs...)
}

// pickTensor returns the tensor called name, or the first one when name is empty.
func pickTensor(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, errors.New("model declares no tensors")
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return ort.InputOutputInfo{}, fmt.Errorf("no tensor named %q (have %v)", name, names)
}

// concreteShape replaces dynamic dimensions (<= 0) with 1, i.e. batch size one.
func concreteShape(dims ort.Shape) ort.Shape {
	out := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}

// checkShape verifies that want fits the model's declared dims.
// Dynamic dimensions accept any size.
func checkShape(declared ort.Shape, want []int64) error {
	if len(declared) != len(want) {
		return fmt.Errorf("rank %d does not match configured shape %v (model declares %v)", len(declared), want, declared)
	}
	for i, d := range declared {
		if d > 0 && d != want[i] {
			return fmt.Errorf("dimension %d is %d, configured shape %v", i, d, want)
		}
	}
	return nil
}
