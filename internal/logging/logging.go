package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// LogFileName is the file created inside the configured log directory.
const LogFileName = "slideshow.log"

var (
	currentLevel LogLevel
	levelOnce    sync.Once

	outputMu sync.Mutex
	logFile  *os.File
	console  io.Writer = os.Stderr
)

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		currentLevel = levelFromEnv(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
	})
}

// levelFromEnv resolves the DEBUG and LOG_LEVEL values into a level.
// DEBUG wins when it holds a truthy value.
func levelFromEnv(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// SetDirectory tees log output into LogFileName inside dir. An empty dir is a
// no-op. On failure the error is returned and output stays on stderr.
func SetDirectory(dir string) error {
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	outputMu.Lock()
	defer outputMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	applyOutput()
	return nil
}

// SetConsole replaces the console writer (stderr by default), keeping any
// log file. A nil writer restores stderr.
func SetConsole(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	console = w
	applyOutput()
}

// applyOutput points the standard logger at the console and log file.
// Callers must hold outputMu.
func applyOutput() {
	if logFile != nil {
		log.SetOutput(io.MultiWriter(console, logFile))
		return
	}
	log.SetOutput(console)
}

// Close releases the log file opened by SetDirectory and restores stderr.
func Close() {
	outputMu.Lock()
	defer outputMu.Unlock()

	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	applyOutput()
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Printf is a pass-through to log.Printf for messages that should always print
func Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
