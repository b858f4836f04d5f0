// Package logger provides category-based logging on top of zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel determines which messages are logged
type LogLevel int

const (
	// LevelDebug logs everything including detailed debug information
	LevelDebug LogLevel = iota
	// LevelInfo logs informational messages, warnings, and errors
	LevelInfo
	// LevelWarning logs warnings and errors only
	LevelWarning
	// LevelError logs only errors
	LevelError
	// LevelSilent disables all logging
	LevelSilent
)

// Category represents a subsystem or component for more granular logging
type Category string

const (
	// CategoryAudio for audio probing and transcoding
	CategoryAudio Category = "AUDIO"
	// CategoryUI for user interface logs
	CategoryUI Category = "UI"
	// CategoryTranscription for transcription-related logs
	CategoryTranscription Category = "TRANSCR"
	// CategoryApp for general application logs
	CategoryApp Category = "APP"
	// CategorySystem for system-related logs
	CategorySystem Category = "SYSTEM"
)

var (
	mu sync.Mutex

	currentLevel LogLevel = LevelInfo
	output       io.Writer = os.Stderr
	useColors              = true

	base = newZerolog(output, useColors)

	// Suppress repetitive errors
	lastError  string
	errorCount int
)

func newZerolog(w io.Writer, colors bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colors,
		TimeFormat: "2006/01/02 15:04:05",
		FormatLevel: func(i interface{}) string {
			return "[" + strings.ToUpper(fmt.Sprintf("%s", i)) + "]"
		},
	}).With().Timestamp().Logger()
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLevel maps a textual level ("debug", "info", "warn", "error", "silent") to a LogLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarning
	case "error":
		return LevelError
	case "silent", "off", "none":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// SetOutput changes where logs are written
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newZerolog(output, useColors)
}

// EnableColors turns on ANSI color in log output
func EnableColors(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	useColors = enable
	base = newZerolog(output, useColors)
}

func shouldLog(level LogLevel) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= currentLevel && currentLevel != LevelSilent
}

func write(level LogLevel, category Category, message string) {
	mu.Lock()
	zl := base
	mu.Unlock()

	var event *zerolog.Event
	switch level {
	case LevelDebug:
		event = zl.Debug()
	case LevelWarning:
		event = zl.Warn()
	case LevelError:
		event = zl.Error()
	default:
		event = zl.Info()
	}
	event.Str("category", string(category)).Msg(message)
}

// Debug logs at debug level
func Debug(category Category, format string, args ...interface{}) {
	if shouldLog(LevelDebug) {
		write(LevelDebug, category, fmt.Sprintf(format, args...))
	}
}

// Info logs at info level
func Info(category Category, format string, args ...interface{}) {
	if shouldLog(LevelInfo) {
		write(LevelInfo, category, fmt.Sprintf(format, args...))
	}
}

// Warning logs at warning level
func Warning(category Category, format string, args ...interface{}) {
	if shouldLog(LevelWarning) {
		write(LevelWarning, category, fmt.Sprintf(format, args...))
	}
}

// Error logs at error level. Identical consecutive errors are only
// written every fifth time.
func Error(category Category, format string, args ...interface{}) {
	if !shouldLog(LevelError) {
		return
	}
	message := fmt.Sprintf(format, args...)

	mu.Lock()
	if message == lastError {
		errorCount++
		if errorCount%5 != 0 {
			mu.Unlock()
			return
		}
		message = fmt.Sprintf("%s (repeated %d times)", message, errorCount)
	} else {
		lastError = message
		errorCount = 1
	}
	mu.Unlock()

	write(LevelError, category, message)
}

// Initialize sets up the logger with default settings
func Initialize() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	Info(CategoryApp, "Logger initialized")
}

// GetStandardLogWriter returns an io.Writer whose lines are logged at the
// given level and category. Used to forward subprocess stderr.
func GetStandardLogWriter(level LogLevel, category Category) io.Writer {
	return &logWriter{level: level, category: category}
}

type logWriter struct {
	level    LogLevel
	category Category
}

// Write implements io.Writer
func (w *logWriter) Write(p []byte) (n int, err error) {
	if shouldLog(w.level) {
		for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				write(w.level, w.category, line)
			}
		}
	}
	return len(p), nil
}
