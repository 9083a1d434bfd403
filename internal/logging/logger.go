// Package logging provides the structured, context-carried zap logger shared
// across every gateway component.
package logging

import (
	"context"
	"os"
	"sync"
	"time"

	"go.elastic.co/apm/module/apmzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const loggerKey ctxKey = "logger"

var (
	defaultLogger *zap.Logger
	once          sync.Once
)

// WithLogger attaches l to ctx so downstream calls can recover it with FromContext.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or the process-wide default.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return GetLogger()
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return WithTrace(ctx, l)
	}
	return WithTrace(ctx, GetLogger())
}

// WithTrace annotates logger with the trace/span id carried by ctx, if any.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// GetLogger returns the lazily-initialized process-wide default logger.
func GetLogger() *zap.Logger {
	once.Do(func() {
		l, err := New(ModeFromEnv())
		if err != nil {
			fallback := zap.NewExample()
			fallback.Warn("failed to initialize logger, using fallback", zap.Error(err))
			defaultLogger = fallback
			return
		}
		defaultLogger = l
	})
	if defaultLogger == nil {
		defaultLogger = zap.NewNop()
	}
	return defaultLogger
}

// Mode selects the logging encoder/level profile.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

// ModeFromEnv mirrors the ancestor's APP_MODE switch for callers that build
// a logger before the typed config is available (app.New, GetLogger).
func ModeFromEnv() Mode {
	if os.Getenv("APP_MODE") == string(ModeProd) {
		return ModeProd
	}
	return ModeDev
}

// New builds a zap logger for mode, wrapped with an apmzap core so APM trace
// correlation fields ride along with every log line.
func New(mode Mode) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if mode != ModeProd {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}

	apmCore := &apmzap.Core{FatalFlushTimeout: 10 * time.Second}
	return cfg.Build(zap.WrapCore(apmCore.WrapCore))
}

// Sync flushes any buffered log entries, ignoring the common "invalid
// argument" error zap returns for stdout on some platforms.
func Sync(l *zap.Logger) {
	if l == nil {
		return
	}
	_ = l.Sync()
}
