// Package logger provides the structured logging facade used across the
// analyzer. It wraps log/slog behind a small interface so packages never
// depend on a concrete handler.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the logging interface handed to components.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// Named returns a child logger grouped under name.
	Named(name string) Logger
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field               { return Field{Key: key, Value: val} }
func Int(key string, val int) Field              { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field          { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field      { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field            { return Field{Key: key, Value: val} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d} }
func Any(key string, val any) Field              { return Field{Key: key, Value: val} }
func Error(err error) Field                      { return Field{Key: "error", Value: err} }

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

func (s *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	s.l.LogAttrs(ctx, level, msg, attrs...)
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// Init installs the global logger writing text lines to stderr. It must be
// called once at process start, before Get.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar})
	global = &slogLogger{l: slog.New(h)}
	return nil
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		panic("logger not initialized: call logger.Init first")
	}
	return global
}

// Named returns a named child of the global logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// SetLevel updates the level of the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and applies a level name. Accepts debug, info,
// warn/warning and error; the empty string means info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
