package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model.Path != "garbage.onnx" {
		t.Errorf("Model.Path = %v, want garbage.onnx", cfg.Model.Path)
	}
	if cfg.Model.ImageSize != 224 {
		t.Errorf("Model.ImageSize = %d, want 224", cfg.Model.ImageSize)
	}
	if !cfg.UI.Fullscreen {
		t.Error("UI.Fullscreen should default to true")
	}
	if cfg.UI.ThumbnailWidth != 900 || cfg.UI.ThumbnailHeight != 650 {
		t.Errorf("thumbnail = %dx%d, want 900x650", cfg.UI.ThumbnailWidth, cfg.UI.ThumbnailHeight)
	}
	if !reflect.DeepEqual(cfg.UI.Extensions, []string{".jpg", ".png", ".jpeg"}) {
		t.Errorf("Extensions = %v", cfg.UI.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.ImageSize != 224 {
		t.Errorf("ImageSize = %d, want 224", cfg.Model.ImageSize)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
model:
  path: /opt/models/garbage.onnx
  image_size: 160
ui:
  fullscreen: false
  top_k: 3
  extensions: [jpg, ".WEBP"]
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GC_IMAGE_SIZE", "192")
	t.Setenv("GC_LABELS_PATH", "/etc/labels.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Model.Path != "/opt/models/garbage.onnx" {
		t.Errorf("Model.Path = %v", cfg.Model.Path)
	}
	if cfg.Model.ImageSize != 192 {
		t.Errorf("ImageSize = %d, want env override 192", cfg.Model.ImageSize)
	}
	if cfg.Labels.Path != "/etc/labels.yaml" {
		t.Errorf("Labels.Path = %v", cfg.Labels.Path)
	}
	if cfg.UI.Fullscreen {
		t.Error("Fullscreen should be false from file")
	}
	if cfg.UI.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.UI.TopK)
	}
	// Untouched keys keep defaults
	if cfg.UI.ThumbnailWidth != 900 {
		t.Errorf("ThumbnailWidth = %d, want 900", cfg.UI.ThumbnailWidth)
	}
	if got := cfg.UI.NormalizedExtensions(); !reflect.DeepEqual(got, []string{".jpg", ".webp"}) {
		t.Errorf("NormalizedExtensions() = %v", got)
	}
	if lvl, _ := cfg.Log.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", lvl)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GC_MODEL_PATH=from-dotenv.onnx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set
	t.Setenv("GC_MODEL_PATH", "")
	os.Unsetenv("GC_MODEL_PATH")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Path != "from-dotenv.onnx" {
		t.Errorf("Model.Path = %v, want from-dotenv.onnx", cfg.Model.Path)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed YAML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model path", func(c *Config) { c.Model.Path = "" }},
		{"zero image size", func(c *Config) { c.Model.ImageSize = 0 }},
		{"negative thumbnail", func(c *Config) { c.UI.ThumbnailHeight = -1 }},
		{"no extensions", func(c *Config) { c.UI.Extensions = nil }},
		{"top k zero", func(c *Config) { c.UI.TopK = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoad_InvalidEnvValuesWarn(t *testing.T) {
	chdir(t, t.TempDir())

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	t.Setenv("GC_IMAGE_SIZE", "abc")
	t.Setenv("GC_FULLSCREEN", "maybe")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Model.ImageSize != 224 {
		t.Errorf("ImageSize = %d, want default 224", cfg.Model.ImageSize)
	}
	if !cfg.UI.Fullscreen {
		t.Error("Fullscreen should keep its default")
	}

	out := buf.String()
	for _, key := range []string{"GC_IMAGE_SIZE", "GC_FULLSCREEN"} {
		if !strings.Contains(out, "key="+key) {
			t.Errorf("no warning for %s in log output:\n%s", key, out)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore Chdir(%q) error = %v", wd, err)
		}
	})
}
