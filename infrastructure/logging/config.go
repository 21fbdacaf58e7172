// Package logging provides a unified logging setup with build-tag-based
// prod/dev split: prod writes to rotating log files, dev writes to console only.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"
)

const logFileName = "garbage-classifier.log"

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum log level to emit.
	Level slog.Level
	// Dir is the directory for log files (prod only).
	// If empty, defaults to os.UserConfigDir()/garbage-classifier/logs.
	Dir string
	// MaxSizeMB is the maximum size in megabytes of a single log file before rotation.
	MaxSizeMB int
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int
	// MaxAgeDays is the maximum number of days to retain old log files.
	MaxAgeDays int
	// Compress determines if rotated log files should be compressed.
	Compress bool
	// AddSource adds source file:line to log entries.
	AddSource bool
}

// DefaultConfig returns sensible defaults for production logging.
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// NewConfig returns DefaultConfig with the given level and directory.
func NewConfig(level slog.Level, dir string) *Config {
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Dir = dir
	return cfg
}

// DefaultLogDir returns the default log directory path.
// Tries os.UserConfigDir, falls back to os.UserCacheDir, then os.TempDir.
func DefaultLogDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, "garbage-classifier", "logs")
}

// resolveDir returns cfg.Dir or the default directory.
func (c *Config) resolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DefaultLogDir()
}

func (c *Config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:     c.Level,
		AddSource: c.AddSource,
	}
}
