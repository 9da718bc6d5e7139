package logger

import (
	"log/slog"
	"os"
	"strings"
)

var (
	// Logger is the global slog logger instance
	Logger *slog.Logger
)

// Init initializes the global logger. Level comes from the LOG_LEVEL
// environment variable; output is structured JSON on stdout.
func Init() {
	InitWithLevel(os.Getenv("LOG_LEVEL"))
}

// InitWithLevel initializes the global logger with an explicit level string.
func InitWithLevel(levelStr string) {
	if levelStr == "" {
		levelStr = "info"
	}

	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "level", levelStr)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

// logger falls back to the default logger so packages can log before Init.
func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}
