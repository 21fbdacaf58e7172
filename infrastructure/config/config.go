// Package config loads application settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName is used for the config and log directories.
const AppName = "garbage-classifier"

// Config holds the application configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Labels LabelsConfig `yaml:"labels"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`
}

// ModelConfig describes the classifier artifact and its input contract.
type ModelConfig struct {
	Path string `yaml:"path"`
	// SharedLibrary is the onnxruntime library; empty uses the loader default.
	SharedLibrary string `yaml:"shared_library"`
	// InputName and OutputName are discovered from the model when empty.
	InputName    string `yaml:"input_name"`
	OutputName   string `yaml:"output_name"`
	ImageSize    int    `yaml:"image_size"`
	ApplySoftmax bool   `yaml:"apply_softmax"`
}

// LabelsConfig points at an optional labels file overriding the embedded one.
type LabelsConfig struct {
	Path string `yaml:"path"`
}

// UIConfig holds window options.
type UIConfig struct {
	Fullscreen      bool     `yaml:"fullscreen"`
	ThumbnailWidth  int      `yaml:"thumbnail_width"`
	ThumbnailHeight int      `yaml:"thumbnail_height"`
	Extensions      []string `yaml:"extensions"`
	TopK            int      `yaml:"top_k"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path:      "garbage.onnx",
			ImageSize: 224,
		},
		UI: UIConfig{
			Fullscreen:      true,
			ThumbnailWidth:  900,
			ThumbnailHeight: 650,
			Extensions:      []string{".jpg", ".png", ".jpeg"},
			TopK:            1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// Load builds the configuration: defaults, then the YAML file at path
// (missing file is fine), then .env and environment overrides.
// An empty path means GC_CONFIG or DefaultPath.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = getEnv("GC_CONFIG", DefaultPath())
	}

	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Model.Path = getEnv("GC_MODEL_PATH", c.Model.Path)
	c.Model.SharedLibrary = getEnv("ONNXRUNTIME_LIB", c.Model.SharedLibrary)
	c.Model.InputName = getEnv("GC_MODEL_INPUT", c.Model.InputName)
	c.Model.OutputName = getEnv("GC_MODEL_OUTPUT", c.Model.OutputName)
	c.Model.ImageSize = getEnvAsInt("GC_IMAGE_SIZE", c.Model.ImageSize)
	c.Labels.Path = getEnv("GC_LABELS_PATH", c.Labels.Path)
	c.UI.Fullscreen = getEnvAsBool("GC_FULLSCREEN", c.UI.Fullscreen)
	c.Log.Level = getEnv("GC_LOG_LEVEL", c.Log.Level)
	c.Log.Dir = getEnv("GC_LOG_DIR", c.Log.Dir)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return errors.New("model.path must be set")
	}
	if c.Model.ImageSize <= 0 {
		return fmt.Errorf("model.image_size must be positive, got %d", c.Model.ImageSize)
	}
	if c.UI.ThumbnailWidth <= 0 || c.UI.ThumbnailHeight <= 0 {
		return fmt.Errorf("ui thumbnail size must be positive, got %dx%d", c.UI.ThumbnailWidth, c.UI.ThumbnailHeight)
	}
	if len(c.UI.Extensions) == 0 {
		return errors.New("ui.extensions must list at least one extension")
	}
	if c.UI.TopK < 1 {
		return fmt.Errorf("ui.top_k must be at least 1, got %d", c.UI.TopK)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// NormalizedExtensions returns the extensions lower-cased with a leading dot.
func (u UIConfig) NormalizedExtensions() []string {
	out := make([]string, 0, len(u.Extensions))
	for _, ext := range u.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
		slog.Warn("Ignoring invalid integer in environment", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		slog.Warn("Ignoring invalid boolean in environment", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}
