package presentation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync"

	"garbage-classifier/application"
	"garbage-classifier/core/state"
	"garbage-classifier/domain/prediction"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	backgroundColor = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	panelColor      = color.NRGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff}
	resultColor     = color.NRGBA{R: 0x00, G: 0xff, B: 0xcc, A: 0xff}
)

const (
	windowTitle  = "Garbage Classification"
	headingText  = "Garbage Classification System"
	headingSize  = 26
	resultSize   = 20
	captionSize  = 14
	controlWidth = 260
)

// MainWindow is the main application window.
type MainWindow struct {
	app    fyne.App
	window fyne.Window
	bridge *UIEventBridge
	logger *slog.Logger

	// UI components - image area
	imageView *canvas.Image
	caption   *canvas.Text

	// UI components - control panel
	loadBtn    *widget.Button
	predictBtn *widget.Button
	resetBtn   *widget.Button
	exitBtn    *widget.Button

	// UI components - result area
	resultText *canvas.Text
	detailText *canvas.Text

	extensions []string
	fullscreen bool

	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App    fyne.App
	Bridge *UIEventBridge
	Logger *slog.Logger
	// Fullscreen opens the window full screen.
	Fullscreen bool
	// Extensions filters the file dialog, e.g. ".jpg".
	Extensions []string
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".jpg", ".png", ".jpeg"}
	}

	w := &MainWindow{
		app:        cfg.App,
		window:     cfg.App.NewWindow(windowTitle),
		bridge:     cfg.Bridge,
		logger:     cfg.Logger,
		extensions: cfg.Extensions,
		fullscreen: cfg.Fullscreen,
	}

	w.init()
	w.setupEventCallbacks()
	w.setupShortcuts()

	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init() {
	heading := canvas.NewText(headingText, color.White)
	heading.TextSize = headingSize
	heading.TextStyle = fyne.TextStyle{Bold: true}
	heading.Alignment = fyne.TextAlignCenter

	w.imageView = canvas.NewImageFromImage(nil)
	w.imageView.FillMode = canvas.ImageFillContain
	w.imageView.ScaleMode = canvas.ImageScaleSmooth

	w.caption = canvas.NewText("", color.Gray{Y: 0xaa})
	w.caption.TextSize = captionSize
	w.caption.Alignment = fyne.TextAlignCenter

	imageArea := container.NewPadded(container.NewBorder(nil, w.caption, nil, nil, w.imageView))

	w.resultText = canvas.NewText("", resultColor)
	w.resultText.TextSize = resultSize
	w.resultText.Alignment = fyne.TextAlignCenter

	w.detailText = canvas.NewText("", color.Gray{Y: 0xcc})
	w.detailText.TextSize = captionSize
	w.detailText.Alignment = fyne.TextAlignCenter

	content := container.NewBorder(
		container.NewPadded(heading),
		container.NewPadded(container.NewVBox(w.resultText, w.detailText)),
		nil,
		w.createControlPanel(),
		imageArea,
	)

	w.window.SetContent(container.NewStack(canvas.NewRectangle(backgroundColor), content))
	w.window.Resize(fyne.NewSize(1280, 800))
}

func (w *MainWindow) createControlPanel() fyne.CanvasObject {
	w.loadBtn = widget.NewButtonWithIcon("Load Image", theme.FolderOpenIcon(), w.handleLoad)
	w.loadBtn.Importance = widget.HighImportance

	w.predictBtn = widget.NewButtonWithIcon("Predict", theme.SearchIcon(), w.handlePredict)
	w.predictBtn.Importance = widget.SuccessImportance

	w.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), w.handleReset)
	w.resetBtn.Importance = widget.WarningImportance

	w.exitBtn = widget.NewButtonWithIcon("Exit", theme.CancelIcon(), w.handleExit)
	w.exitBtn.Importance = widget.DangerImportance

	buttons := container.NewVBox(
		w.loadBtn,
		w.predictBtn,
		w.resetBtn,
		w.exitBtn,
		layout.NewSpacer(),
	)

	// Fixed-width panel: [Load] [Predict] [Reset] [Exit] stacked on the right
	sized := container.NewGridWrap(fyne.NewSize(controlWidth, buttons.MinSize().Height), buttons)
	return container.NewStack(canvas.NewRectangle(panelColor), container.NewPadded(sized))
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnStateChanged: func(oldState, newState state.AppState) {
			w.logger.Debug("State changed", "from", oldState, "to", newState)
		},
		OnImageLoaded: func(path string, thumb image.Image) {
			w.showImage(path, thumb)
			w.clearResult()
		},
		OnImageCleared: func() {
			w.showImage("", nil)
			w.clearResult()
		},
		OnPredictionCompleted: func(path string, result *prediction.Result) {
			w.showResult(result)
		},
		OnPredictionFailed: func(path string, err error) {
			dialog.ShowError(fmt.Errorf("prediction failed for %s: %w", filepath.Base(path), err), w.window)
		},
		OnNotice: func(title, message string) {
			dialog.ShowInformation(title, message, w.window)
		},
		OnOperationFailed: func(operation string, err error) {
			dialog.ShowError(err, w.window)
		},
	})
}

func (w *MainWindow) setupShortcuts() {
	w.window.Canvas().SetOnTypedKey(w.handleKey)

	// Dropping a file behaves like Load Image
	w.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) == 0 {
			return
		}
		w.loadURI(uris[0])
	})
}

func (w *MainWindow) handleKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		w.setFullScreen(false)
	case fyne.KeyF11:
		w.setFullScreen(!w.fullscreen)
	}
}

func (w *MainWindow) setFullScreen(on bool) {
	w.fullscreen = on
	w.window.SetFullScreen(on)
}

func (w *MainWindow) handleLoad() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if reader == nil {
			w.runCommand("load", func() error { return w.bridge.LoadImage("") })
			return
		}
		uri := reader.URI()
		reader.Close()
		w.loadURI(uri)
	}, w.window)
	fd.SetFilter(storage.NewExtensionFileFilter(w.extensions))
	fd.Show()
}

func (w *MainWindow) loadURI(uri fyne.URI) {
	if uri.Scheme() != "file" {
		dialog.ShowError(fmt.Errorf("unsupported location %s", uri.String()), w.window)
		return
	}
	w.runCommand("load", func() error { return w.bridge.LoadImage(uri.Path()) })
}

func (w *MainWindow) handlePredict() {
	w.runCommand("predict", w.bridge.Predict)
}

func (w *MainWindow) handleReset() {
	w.runCommand("reset", w.bridge.Reset)
}

func (w *MainWindow) handleExit() {
	w.window.Close()
}

// runCommand executes fn; dialogs are driven by events so errors are only logged.
func (w *MainWindow) runCommand(name string, fn func() error) {
	if err := fn(); err != nil {
		if errors.Is(err, application.ErrNoImage) {
			return
		}
		w.logger.Warn("Command failed", "command", name, "error", err)
	}
}

func (w *MainWindow) showImage(path string, img image.Image) {
	w.imageView.Image = img
	if img != nil {
		b := img.Bounds()
		w.imageView.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
		w.caption.Text = filepath.Base(path)
	} else {
		w.imageView.SetMinSize(fyne.NewSize(0, 0))
		w.caption.Text = ""
	}
	w.imageView.Refresh()
	w.caption.Refresh()
}

func (w *MainWindow) showResult(result *prediction.Result) {
	w.resultText.Text = result.String()
	w.detailText.Text = result.Runners()
	w.resultText.Refresh()
	w.detailText.Refresh()
}

func (w *MainWindow) clearResult() {
	w.resultText.Text = ""
	w.detailText.Text = ""
	w.resultText.Refresh()
	w.detailText.Refresh()
}

// Show displays the window, full screen if configured.
func (w *MainWindow) Show() {
	w.window.SetFullScreen(w.fullscreen)
	w.window.Show()
}

// Cleanup detaches the window from the bridge.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		if w.bridge != nil {
			w.bridge.SetCallbacks(nil)
		}
		w.logger.Info("Main window closed")
	})
}
