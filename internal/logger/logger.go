// Package logger is the leveled logging facade used across the generator.
//
// Components call Debug/Info/Warn/Error with a message and key/value pairs.
// The sink is a single LogFunc; by default it forwards to log/slog's default
// logger, and tests or the CLI can swap it with SetLogger.
package logger

import (
	"context"
	"log/slog"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

var logFunc LogFunc = SlogFunc(nil)

// SetLogger sets the global logger function. A nil f restores the slog default.
func SetLogger(f LogFunc) {
	if f == nil {
		f = SlogFunc(nil)
	}
	logFunc = f
}

// SlogFunc adapts a *slog.Logger to a LogFunc. A nil logger resolves to
// slog.Default() at call time so later slog.SetDefault calls are honored.
func SlogFunc(l *slog.Logger) LogFunc {
	return func(level LogLevel, msg string, keyvals ...interface{}) {
		target := l
		if target == nil {
			target = slog.Default()
		}
		target.Log(context.Background(), level.slogLevel(), msg, keyvals...)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a message at debug level
func Debug(msg string, keyvals ...interface{}) {
	logFunc(DebugLevel, msg, keyvals...)
}

// Info logs a message at info level
func Info(msg string, keyvals ...interface{}) {
	logFunc(InfoLevel, msg, keyvals...)
}

// Warn logs an advisory condition; processing continues unchanged
func Warn(msg string, keyvals ...interface{}) {
	logFunc(WarnLevel, msg, keyvals...)
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	logFunc(ErrorLevel, msg, keyvals...)
}
