package core

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const ctxKeyLogger contextKey = "logger"

// ContextWithLogger attaches a request-scoped logger. The Validator logs
// through it instead of its own logger when present.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// LoggerFromContext returns the request-scoped logger, or fallback.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx == nil {
		return fallback
	}
	if l, ok := ctx.Value(ctxKeyLogger).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}
