// backend/pkg/logger/logger.go
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around a zap sugared logger. Fields are passed as
// alternating key/value pairs.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a new console logger named after the component using it.
func New(name string, debug bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !debug
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewExample()
	}
	return &Logger{SugaredLogger: base.Named(name).Sugar()}
}

// NewProduction creates a JSON logger for long running services.
func NewProduction(name string) *Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewExample()
	}
	return &Logger{SugaredLogger: base.Named(name).Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.Infow(msg, kv...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.Errorw(msg, kv...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.Warnw(msg, kv...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.Debugw(msg, kv...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(kv...)}
}

// Named returns a child logger with the name appended.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}
