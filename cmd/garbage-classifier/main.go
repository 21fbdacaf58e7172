// Package main is the entry point for the garbage classifier.
package main

import (
	"log/slog"
	"os"

	"garbage-classifier/application"
	"garbage-classifier/core/eventbus"
	"garbage-classifier/domain/label"
	"garbage-classifier/infrastructure/config"
	"garbage-classifier/infrastructure/imageproc"
	"garbage-classifier/infrastructure/inference"
	"garbage-classifier/infrastructure/logging"
	"garbage-classifier/presentation"
	"garbage-classifier/resources"

	"fyne.io/fyne/v2/app"
)

const appID = "io.github.garbageclassifier"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger, closeLog, err := logging.Setup(logging.NewConfig(level, cfg.Log.Dir))
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting garbage classifier", "model", cfg.Model.Path)

	labels, err := loadLabels(cfg)
	if err != nil {
		logger.Error("Failed to load labels", "error", err)
		os.Exit(1)
	}
	logger.Info("Labels loaded", "model", labels.Model(), "count", labels.Len(), "labels", labels.Names())

	preprocessor := imageproc.NewPreprocessor(cfg.Model.ImageSize)
	classifier, err := inference.NewONNXClassifier(&inference.Config{
		ModelPath:     cfg.Model.Path,
		SharedLibrary: cfg.Model.SharedLibrary,
		InputName:     cfg.Model.InputName,
		OutputName:    cfg.Model.OutputName,
		InputShape:    preprocessor.Shape(),
		ApplySoftmax:  cfg.Model.ApplySoftmax,
	}, logger)
	if err != nil {
		logger.Error("Failed to load model", "error", err)
		os.Exit(1)
	}
	defer classifier.Close()

	// A width mismatch would silently mislabel every prediction
	if err := labels.CheckWidth(classifier.OutputWidth()); err != nil {
		logger.Error("Model does not match labels", "error", err)
		os.Exit(1)
	}

	eventBus := eventbus.New(logger)
	defer eventBus.Close()

	controller := application.NewController(&application.ControllerConfig{
		EventBus:     eventBus,
		Classifier:   classifier,
		Preprocessor: preprocessor,
		Labels:       labels,
		Thumbnailer:  application.FitThumbnail(cfg.UI.ThumbnailWidth, cfg.UI.ThumbnailHeight),
		TopK:         cfg.UI.TopK,
		Logger:       logger,
	})

	bridge := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Controller: controller,
		EventBus:   eventBus,
		Logger:     logger,
	})
	defer bridge.Close()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.GetAppIcon())

	mainWindow := presentation.NewMainWindow(&presentation.MainWindowConfig{
		App:        fyneApp,
		Bridge:     bridge,
		Logger:     logger,
		Fullscreen: cfg.UI.Fullscreen,
		Extensions: cfg.UI.NormalizedExtensions(),
	})
	defer mainWindow.Cleanup()

	mainWindow.Show()
	fyneApp.Run()

	logger.Info("Application shutdown complete")
}

func loadLabels(cfg *config.Config) (*label.Set, error) {
	if cfg.Labels.Path != "" {
		slog.Info("Using labels file", "path", cfg.Labels.Path)
		return label.LoadFromFile(cfg.Labels.Path)
	}
	return label.LoadFromFS(resources.LabelFiles, label.DefaultFile)
}
