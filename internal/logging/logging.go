package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel is the minimum severity that reaches the output.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	logger  = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	logFile *os.File
)

// ParseLogLevel maps "debug", "info", "warn" and "error" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitializeLogging sets the level and, when logFilePath is not empty,
// writes every record to both stdout and the file.
func InitializeLogging(lvl LogLevel, logFilePath string) error {
	var out io.Writer = os.Stdout

	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)

		mu.Lock()
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		mu.Unlock()
	}

	SetOutput(out, lvl)
	LogInfo("Logging system initialized", "level", lvl.String(), "file", logFilePath)
	return nil
}

// SetOutput replaces the sink. Tests use it to capture records.
func SetOutput(w io.Writer, lvl LogLevel) {
	level.Set(lvl.slogLevel())

	mu.Lock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// CloseLogging closes the log file opened by InitializeLogging, if any.
func CloseLogging() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Logger returns the current structured logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func LogDebug(message string, keyvals ...interface{}) {
	Logger().Debug(message, keyvals...)
}

func LogInfo(message string, keyvals ...interface{}) {
	Logger().Info(message, keyvals...)
}

func LogWarn(message string, keyvals ...interface{}) {
	Logger().Warn(message, keyvals...)
}

func LogError(message string, keyvals ...interface{}) {
	Logger().Error(message, keyvals...)
}
