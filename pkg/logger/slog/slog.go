// Package slog adapts a [log/slog] handler to the client's logger.Logger.
package slog

import (
	"log/slog"

	"github.com/ma2za/substack.go/pkg/logger"
)

// Logger forwards to a *slog.Logger.
type Logger struct {
	logger *slog.Logger
}

var _ logger.Logger = (*Logger)(nil)

func New(h slog.Handler) *Logger {
	return &Logger{logger: slog.New(h)}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}
