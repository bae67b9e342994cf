// Package logger builds the process-wide zap logger and carries the
// request id through context so handlers and use cases log correlated
// entries.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// New constructs a zap logger for the given level and encoding.
// Unknown levels fall back to info, unknown encodings to json.
func New(level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return cfg.Build()
}

// ContextWithRequestID stores the request id for later retrieval by
// WithRequestID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithRequestID returns a logger annotated with the request id from
// ctx, or the logger unchanged when no id is present.
func WithRequestID(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
