// Package logging builds the process logger: a text console handler and an
// optional file handler behind a fan-out MultiHandler.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// SlogManager owns the configured *slog.Logger.
type SlogManager struct {
	console io.Writer
	logger  *slog.Logger
}

// NewSlogManager creates a manager that writes console output to console.
// A nil console leaves only the file handler. The CLI passes os.Stderr so that
// stdout carries nothing but the run log.
func NewSlogManager(console io.Writer) *SlogManager {
	return &SlogManager{console: console}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup (re)initialises the logger. file may be nil.
func (m *SlogManager) Setup(file io.Writer, level string) {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if m.console != nil {
		handlers = append(handlers, slog.NewTextHandler(m.console, handlerOpts))
	}
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(NewMultiHandler())
}
