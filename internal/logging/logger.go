// Package logging wraps slog for the wh command and its services.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the global logger instance.
var Logger = New(os.Stderr, DebugEnabled())

// New builds a text logger writing to w. Debug records are emitted only when
// debug is true.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Configure replaces the global logger. Verbose mode or WH_DEBUG enables debug
// output.
func Configure(w io.Writer, verbose bool) {
	Logger = New(w, verbose || DebugEnabled())
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
