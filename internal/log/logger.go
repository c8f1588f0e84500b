package log

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tokencounter/internal/core"
)

// LogLevel defines the severity level for log messages.
type LogLevel int

// Log level constants.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelPrefixes = map[LogLevel]string{
	DEBUG: "[DEBUG] ",
	INFO:  "[INFO] ",
	WARN:  "[WARN] ",
	ERROR: "[ERROR] ",
	FATAL: "[FATAL] ",
}

// AppLogger is the application logger implementation.
type AppLogger struct {
	logger     *log.Logger
	minLevel   LogLevel
	fileHandle *os.File
	mu         sync.RWMutex
}

// NewAppLoggerWithConfig creates a logger instance with configuration.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	minLevel := INFO
	if debugMode {
		minLevel = DEBUG
	}
	return &AppLogger{
		logger:   log.New(output, "", log.LstdFlags),
		minLevel: minLevel,
	}
}

func (l *AppLogger) logf(level LogLevel, format string, args ...any) {
	if l == nil || level < l.minLevel {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Printf(levelPrefixes[level]+format, args...)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) { l.logf(DEBUG, format, args...) }

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) { l.logf(INFO, format, args...) }

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) { l.logf(WARN, format, args...) }

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) { l.logf(ERROR, format, args...) }

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l == nil {
		log.Fatalf(levelPrefixes[FATAL]+format, args...)
	}
	l.logger.Fatalf(levelPrefixes[FATAL]+format, args...)
}

// Close safely closes log file handle.
func (l *AppLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

// containsPathTraversal reports whether path tries to climb out of its directory.
func containsPathTraversal(path string) bool {
	if path == "" {
		return false
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// createDebugFileOutput opens DEBUG_FILE for appending, falling back to stdout.
func createDebugFileOutput(debugFile string) (io.Writer, *os.File) {
	if debugFile == "" {
		return os.Stdout, nil
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		log.Printf("[WARN] DEBUG_FILE path too long, falling back to stdout")
		return os.Stdout, nil
	}

	if containsPathTraversal(debugFile) {
		log.Printf("[WARN] DEBUG_FILE contains path traversal characters, falling back to stdout")
		return os.Stdout, nil
	}

	//nolint:gosec // G304: path validated by containsPathTraversal
	file, err := os.OpenFile(filepath.Clean(debugFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		log.Printf("[WARN] Failed to open DEBUG_FILE '%s': %v, falling back to stdout", debugFile, err)
		return os.Stdout, nil
	}

	return file, file
}

// IsDebug returns whether the app is running in debug mode.
func IsDebug() bool {
	return os.Getenv("GIN_MODE") == "debug"
}

// CreateLogger creates a logger instance (for dependency injection).
func CreateLogger() core.Logger {
	output, fileHandle := createDebugFileOutput(os.Getenv("DEBUG_FILE"))

	logger := NewAppLoggerWithConfig(output, IsDebug())
	logger.fileHandle = fileHandle
	return logger
}
