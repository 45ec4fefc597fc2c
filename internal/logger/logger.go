// Package logger is a thin structured logging layer over zap.
package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chartfeed/internal/errors"
)

// Interface is what components log through.
type Interface interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(err error, fields ...Field)
	DebugContext(ctx context.Context, message string, fields ...Field)
	InfoContext(ctx context.Context, message string, fields ...Field)
	WarnContext(ctx context.Context, message string, fields ...Field)
	ErrorContext(ctx context.Context, err error, fields ...Field)
	With(fields ...Field) Interface
	Sync() error
}

// Field is one key/value pair written with a log entry.
type Field struct {
	Key   string
	Value any
}

// NewField returns a Field.
func NewField(key string, value any) Field { return Field{Key: key, Value: value} }

// Level is a minimum severity.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) zapLevel() zapcore.Level {
	switch Level(strings.ToLower(string(l))) {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

const messageKey = "message"

// Option tweaks the zap production config.
type Option func(*zap.Config)

// WithLevel sets the minimum level. Unknown levels mean info.
func WithLevel(level Level) Option {
	return func(c *zap.Config) { c.Level = zap.NewAtomicLevelAt(level.zapLevel()) }
}

// WithOutputPaths sets where entries go. "stdout" and "stderr" are special.
func WithOutputPaths(paths ...string) Option {
	return func(c *zap.Config) { c.OutputPaths = paths }
}

// Logger implements Interface on top of zap.
type Logger struct {
	zap *zap.Logger
}

// New builds a JSON logger from zap's production config.
func New(opts ...Option) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.MessageKey = messageKey
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	for _, opt := range opts {
		opt(&cfg)
	}
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{zap: z}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger { return &Logger{zap: zap.NewNop()} }

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger { return &Logger{zap: z} }

func (l *Logger) Debug(message string, fields ...Field) { l.zap.Debug(message, convert(fields)...) }
func (l *Logger) Info(message string, fields ...Field)  { l.zap.Info(message, convert(fields)...) }
func (l *Logger) Warn(message string, fields ...Field)  { l.zap.Warn(message, convert(fields)...) }

// Error logs err at error level. A stack carried by err replaces zap's own.
func (l *Logger) Error(err error, fields ...Field) {
	if err == nil {
		return
	}
	ce := l.zap.Check(zapcore.ErrorLevel, err.Error())
	if ce == nil {
		return
	}
	if st, ok := err.(errors.StackTracer); ok {
		if trace := strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace())); trace != "" {
			ce.Stack = trace
		}
	}
	ce.Write(convert(fields)...)
}

func (l *Logger) DebugContext(ctx context.Context, message string, fields ...Field) {
	l.Debug(message, withRequestID(ctx, fields)...)
}

func (l *Logger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.Info(message, withRequestID(ctx, fields)...)
}

func (l *Logger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.Warn(message, withRequestID(ctx, fields)...)
}

func (l *Logger) ErrorContext(ctx context.Context, err error, fields ...Field) {
	l.Error(err, withRequestID(ctx, fields)...)
}

// With returns a child logger that always writes fields.
func (l *Logger) With(fields ...Field) Interface {
	return &Logger{zap: l.zap.With(convert(fields)...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.zap.Sync() }

func convert(fields []Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

type requestIDKey struct{}

// WithRequestID stores id in ctx. An empty id is replaced by a new UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, fields []Field) []Field {
	if id := RequestID(ctx); id != "" {
		return append(fields, NewField("request_id", id))
	}
	return fields
}
