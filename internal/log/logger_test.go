package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAppLoggerWithConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, true)
	if logger == nil {
		t.Fatal("logger should not be nil")
	}
	if logger.minLevel != DEBUG {
		t.Error("debug mode should enable DEBUG level")
	}
	if logger.fileHandle != nil {
		t.Error("external writer should not hold a file handle")
	}
}

func TestAppLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		message   string
		expectLog bool
	}{
		{"debug mode writes", true, "debug message", true},
		{"release mode drops", false, "should not appear", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewAppLoggerWithConfig(&buf, tt.debugMode)
			logger.Debug(tt.message)
			output := buf.String()
			hasLog := strings.Contains(output, tt.message)
			if hasLog != tt.expectLog {
				t.Errorf("expected output=%v, got %v", tt.expectLog, hasLog)
			}
			if tt.expectLog && !strings.Contains(output, "[DEBUG]") {
				t.Error("debug line should carry [DEBUG] prefix")
			}
		})
	}
}

func TestAppLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		write  func(l *AppLogger)
		prefix string
		text   string
	}{
		{"info", func(l *AppLogger) { l.Info("listing %s", "models") }, "[INFO]", "listing models"},
		{"warn", func(l *AppLogger) { l.Warn("retry %d", 3) }, "[WARN]", "retry 3"},
		{"error", func(l *AppLogger) { l.Error("upstream: %v", "boom") }, "[ERROR]", "upstream: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewAppLoggerWithConfig(&buf, false)
			tt.write(logger)
			output := buf.String()
			if !strings.Contains(output, tt.prefix) {
				t.Errorf("output %q should contain %s", output, tt.prefix)
			}
			if !strings.Contains(output, tt.text) {
				t.Errorf("output %q should contain %q", output, tt.text)
			}
		})
	}
}

func TestAppLogger_NilSafety(t *testing.T) {
	var logger *AppLogger
	logger.Debug("no panic")
	logger.Info("no panic")
	logger.Warn("no panic")
	logger.Error("no panic")
	if err := logger.Close(); err != nil {
		t.Errorf("closing nil logger should not fail: %v", err)
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"plain path", "/var/log/app.log", false},
		{"parent segment", "/var/../etc/passwd", true},
		{"leading parent", "../secret.txt", true},
		{"current dir", "./local.log", false},
		{"windows parent", "..\\config.ini", true},
		{"empty", "", false},
		{"dots in name", "/var/log/app..2024.log", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsPathTraversal(tt.path); got != tt.expected {
				t.Errorf("containsPathTraversal(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCreateDebugFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	w, fh := createDebugFileOutput(path)
	if fh == nil {
		t.Fatal("expected a file handle")
	}
	defer func() { _ = fh.Close() }()
	if w != fh {
		t.Error("writer should be the opened file")
	}

	w, fh = createDebugFileOutput("")
	if w != os.Stdout || fh != nil {
		t.Error("empty DEBUG_FILE should fall back to stdout")
	}
}

func TestIsDebug(t *testing.T) {
	tests := []struct {
		ginMode  string
		expected bool
	}{
		{"debug", true},
		{"release", false},
		{"test", false},
	}
	for _, tt := range tests {
		t.Run(tt.ginMode, func(t *testing.T) {
			t.Setenv("GIN_MODE", tt.ginMode)
			if got := IsDebug(); got != tt.expected {
				t.Errorf("IsDebug() = %v, want %v", got, tt.expected)
			}
		})
	}
}
