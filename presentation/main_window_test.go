package presentation

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"garbage-classifier/application"
	"garbage-classifier/core/eventbus"
	"garbage-classifier/core/state"
	"garbage-classifier/domain/label"
	"garbage-classifier/infrastructure/imageproc"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
)

type stubClassifier struct {
	scores []float32
}

func (s *stubClassifier) Classify(*imageproc.Tensor) ([]float32, error) {
	return s.scores, nil
}

func newTestWindow(t *testing.T) (*MainWindow, *UIEventBridge) {
	t.Helper()

	labels, err := label.NewSet([]string{
		"battery", "biological", "brown-glass", "cardboard", "clothes", "green-glass",
		"metal", "paper", "plastic", "shoes", "trash", "white-glass",
	})
	if err != nil {
		t.Fatal(err)
	}

	scores := make([]float32, 12)
	scores[0] = 0.93 // battery
	scores[6] = 0.05

	bus := eventbus.New(nil)
	t.Cleanup(bus.Close)

	controller := application.NewController(&application.ControllerConfig{
		EventBus:     bus,
		Classifier:   &stubClassifier{scores: scores},
		Preprocessor: imageproc.NewPreprocessor(16),
		Labels:       labels,
		TopK:         2,
	})

	bridge := NewUIEventBridge(&BridgeConfig{Controller: controller, EventBus: bus})
	t.Cleanup(bridge.Close)

	w := NewMainWindow(&MainWindowConfig{
		App:        test.NewTempApp(t),
		Bridge:     bridge,
		Fullscreen: true,
	})
	return w, bridge
}

func writeWindowTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	path := filepath.Join(t.TempDir(), "battery.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMainWindowConfig(t *testing.T) {
	cfg := &MainWindowConfig{}

	if cfg.App != nil {
		t.Error("App should be nil by default")
	}
	if cfg.Bridge != nil {
		t.Error("Bridge should be nil by default")
	}
	if cfg.Logger != nil {
		t.Error("Logger should be nil by default")
	}
}

func TestMainWindow_PredictWithoutImageShowsNotice(t *testing.T) {
	w, bridge := newTestWindow(t)

	test.Tap(w.predictBtn)

	if bridge.State() != state.StateIdle {
		t.Errorf("State() = %v, want Idle", bridge.State())
	}
	if w.resultText.Text != "" {
		t.Errorf("result = %q, want empty", w.resultText.Text)
	}
	if w.window.Canvas().Overlays().Top() == nil {
		t.Error("expected an information dialog")
	}
}

func TestMainWindow_LoadPredictReset(t *testing.T) {
	w, bridge := newTestWindow(t)
	path := writeWindowTestImage(t)

	w.loadURI(storage.NewFileURI(path))

	if bridge.State() != state.StateLoaded {
		t.Fatalf("State() = %v, want Loaded", bridge.State())
	}
	if w.imageView.Image == nil {
		t.Fatal("image not displayed")
	}
	if w.caption.Text != "battery.png" {
		t.Errorf("caption = %q, want battery.png", w.caption.Text)
	}

	test.Tap(w.predictBtn)

	if bridge.State() != state.StatePredicted {
		t.Fatalf("State() = %v, want Predicted", bridge.State())
	}
	if w.resultText.Text != "Prediction: battery  (0.93)" {
		t.Errorf("result = %q", w.resultText.Text)
	}
	if w.detailText.Text != "metal 0.05" {
		t.Errorf("detail = %q", w.detailText.Text)
	}

	// Loading again clears the previous result
	w.loadURI(storage.NewFileURI(path))
	if w.resultText.Text != "" {
		t.Errorf("result after reload = %q, want empty", w.resultText.Text)
	}

	test.Tap(w.resetBtn)

	if bridge.State() != state.StateIdle {
		t.Errorf("State() = %v, want Idle", bridge.State())
	}
	if w.imageView.Image != nil || w.caption.Text != "" || w.resultText.Text != "" {
		t.Error("reset should clear image, caption and result")
	}
}

func TestMainWindow_LoadBrokenFileShowsError(t *testing.T) {
	w, bridge := newTestWindow(t)

	bad := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	w.loadURI(storage.NewFileURI(bad))

	if bridge.State() != state.StateIdle {
		t.Errorf("State() = %v, want Idle", bridge.State())
	}
	if w.window.Canvas().Overlays().Top() == nil {
		t.Error("expected an error dialog")
	}
}

func TestMainWindow_FullscreenKeys(t *testing.T) {
	w, _ := newTestWindow(t)
	w.Show()

	if !w.window.FullScreen() {
		t.Fatal("window should start full screen")
	}

	w.handleKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if w.window.FullScreen() {
		t.Error("Escape should leave full screen")
	}

	w.handleKey(&fyne.KeyEvent{Name: fyne.KeyF11})
	if !w.window.FullScreen() {
		t.Error("F11 should enter full screen")
	}

	w.handleKey(&fyne.KeyEvent{Name: fyne.KeyF11})
	if w.window.FullScreen() {
		t.Error("F11 should toggle full screen off")
	}
}

func TestMainWindow_CleanupDetachesCallbacks(t *testing.T) {
	w, bridge := newTestWindow(t)
	w.Cleanup()
	w.Cleanup()

	// Commands still work without a window attached
	if err := bridge.Reset(); err != nil {
		t.Errorf("Reset() error = %v", err)
	}
}
