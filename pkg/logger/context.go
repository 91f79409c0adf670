package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext stores a request-scoped logger in ctx
func WithContext(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, lg)
}

// FromContext returns the request-scoped logger, or fallback when none was stored
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if lg, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && lg != nil {
		return lg
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
