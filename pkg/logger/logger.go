// Package logger wraps zerolog with context-scoped fields. Fields added with
// WithField/WithFields travel on the context; trace and span ids from an
// active OpenTelemetry span are attached to every entry.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	ServiceName string
	Level       zerolog.Level
	// WarnStack adds a stack trace to warnings as well as errors.
	WarnStack bool
	Output    io.Writer
	// Console switches to zerolog's human-readable writer.
	Console bool
}

type Logger struct {
	base      zerolog.Logger
	warnStack bool
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()
	return &Logger{base: base, warnStack: opts.WarnStack}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// ParseLevel falls back to info for empty or unknown input.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) scoped(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry := zerolog.Ctx(ctx); entry.GetLevel() != zerolog.Disabled {
			return entry
		}
	}
	return &l.base
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.WithFields(ctx, map[string]any{key: value})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	child := l.scoped(ctx).With().Fields(fields).Logger()
	return child.WithContext(ctx)
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

func (l *Logger) WithOrderNumber(ctx context.Context, orderNumber string) context.Context {
	return l.WithField(ctx, "order_number", orderNumber)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.emit(ctx, l.scoped(ctx).Debug(), false).Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.emit(ctx, l.scoped(ctx).Info(), false).Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	l.emit(ctx, l.scoped(ctx).Warn(), l.warnStack).Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	ev := l.scoped(ctx).Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.emit(ctx, ev, true).Msg(msg)
}

func (l *Logger) emit(ctx context.Context, ev *zerolog.Event, withStack bool) *zerolog.Event {
	if ev == nil {
		return nil
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ev = ev.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	if withStack {
		ev = ev.Str("stack", strings.TrimSpace(string(debug.Stack())))
	}
	return ev
}
