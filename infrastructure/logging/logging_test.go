package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(slog.LevelDebug, "/var/log/gc")

	if cfg.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level)
	}
	if cfg.resolveDir() != "/var/log/gc" {
		t.Errorf("resolveDir() = %v", cfg.resolveDir())
	}
	if cfg.MaxSizeMB != DefaultConfig().MaxSizeMB {
		t.Errorf("MaxSizeMB = %d, want default", cfg.MaxSizeMB)
	}
}

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()

	if filepath.Base(dir) != "logs" {
		t.Errorf("DefaultLogDir() = %v, want .../logs", dir)
	}
	if !strings.Contains(dir, "garbage-classifier") {
		t.Errorf("DefaultLogDir() = %v, want app directory", dir)
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	cfg := NewConfig(slog.LevelWarn, t.TempDir())
	logger, closeFn, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closeFn()

	if logger == nil {
		t.Fatal("Setup() returned nil logger")
	}
	if slog.Default() != logger {
		t.Error("Setup should install the logger as the slog default")
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
