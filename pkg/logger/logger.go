package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger — минимальный интерфейс логгера, который используют все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger создаёт JSON-логгер в stdout. Уровень берётся из LOG_LEVEL (debug|info|warn|error).
func NewSlogLogger() Logger {
	return NewSlogLoggerWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

func NewSlogLoggerWithWriter(w io.Writer, level string) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &slogLogger{l: slog.New(h)}
}

// NewNopLogger возвращает логгер, который ничего не пишет.
func NewNopLogger() Logger {
	return NewSlogLoggerWithWriter(io.Discard, "error")
}

func (s *slogLogger) Debugf(format string, args ...any) {
	s.log(slog.LevelDebug, nil, format, args...)
}

func (s *slogLogger) Infof(format string, args ...any) {
	s.log(slog.LevelInfo, nil, format, args...)
}

func (s *slogLogger) Warnf(format string, args ...any) {
	s.log(slog.LevelWarn, nil, format, args...)
}

func (s *slogLogger) Errorf(err error, format string, args ...any) {
	s.log(slog.LevelError, err, format, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) log(level slog.Level, err error, format string, args ...any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if err != nil {
		s.l.Log(ctx, level, msg, slog.String("err", err.Error()))
		return
	}
	s.l.Log(ctx, level, msg)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
