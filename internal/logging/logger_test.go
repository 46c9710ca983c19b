package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"userdir/internal/config"
)

func TestNew_InteractiveWithoutDebugIsNop(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "debug"}, Options{Interactive: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.Base().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected a no-op logger when debug_mode is off")
	}
}

func TestNew_InteractiveWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "userdir.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", File: logFile, DebugMode: true}

	l, err := New(cfg, Options{Interactive: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.For(CategorySource).Info("fetched users", zap.Int("count", 10))
	l.For(CategorySource).Debug("hidden at info level")
	_ = l.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"logger":"source"`) {
		t.Errorf("expected category name in log, got: %s", out)
	}
	if !strings.Contains(out, `"count":10`) {
		t.Errorf("expected structured field in log, got: %s", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug entry should be filtered at info level")
	}
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "userdir.log")
	l, err := New(config.LoggingConfig{Level: "error", File: logFile}, Options{Interactive: true, Verbose: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !l.Base().Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level with --verbose")
	}
	_ = l.Sync()
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, Options{}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNew_InteractiveRequiresFile(t *testing.T) {
	if _, err := New(config.LoggingConfig{DebugMode: true}, Options{Interactive: true}); err == nil {
		t.Error("expected error when no log file is configured")
	}
}

func TestFor_DisabledCategoryIsNop(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "userdir.log")
	cfg := config.LoggingConfig{
		File:       logFile,
		DebugMode:  true,
		Categories: map[string]bool{"ui": false},
	}
	l, err := New(cfg, Options{Interactive: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.For(CategoryUI).Core().Enabled(zapcore.ErrorLevel) {
		t.Error("ui category should be disabled")
	}
	if !l.For(CategoryDirectory).Core().Enabled(zapcore.InfoLevel) {
		t.Error("directory category should be enabled")
	}
	_ = l.Sync()
}

func TestWrap(t *testing.T) {
	l := Wrap(nil)
	if l.Base() == nil {
		t.Fatal("expected a logger")
	}
	l.For(CategoryBoot).Info("no-op")
}
