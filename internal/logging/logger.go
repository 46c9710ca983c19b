// Package logging builds the zap loggers used across userdir.
// Interactive runs own the terminal, so they log to a file and only when
// debug_mode (or --verbose) is on; other runs log to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"userdir/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config resolution
	CategorySource    Category = "source"    // Remote/file fetches
	CategoryDirectory Category = "directory" // Load lifecycle, derivation
	CategoryUI        Category = "ui"        // TUI events
)

// Options controls where logs go.
type Options struct {
	// Interactive is set when the TUI owns stdout/stderr.
	Interactive bool
	// Verbose forces debug level and enables logging in interactive mode.
	Verbose bool
}

// Logger hands out named child loggers per category.
type Logger struct {
	base *zap.Logger
	cfg  config.LoggingConfig
}

// New builds a Logger from cfg.
func New(cfg config.LoggingConfig, opts Options) (*Logger, error) {
	if opts.Interactive && !cfg.DebugMode && !opts.Verbose {
		return &Logger{base: zap.NewNop(), cfg: cfg}, nil
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = nil
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if opts.Interactive {
		if cfg.File == "" {
			return nil, fmt.Errorf("interactive logging requires logging.file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{cfg.File}
	}

	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{base: base, cfg: cfg}, nil
}

// Wrap adapts an existing zap logger, typically zap.NewNop() in tests.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{base: l}
}

// Base returns the root logger.
func (l *Logger) Base() *zap.Logger { return l.base }

// For returns the logger for a category, or a no-op logger when the
// category is disabled in config.
func (l *Logger) For(cat Category) *zap.Logger {
	if !l.cfg.IsCategoryEnabled(string(cat)) {
		return zap.NewNop()
	}
	return l.base.Named(string(cat))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
