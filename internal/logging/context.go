package logging

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	actionKey ctxKey = "action"
)

// WithLogger stores the provided logger on the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the context logger or falls back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		if action := ActionFromContext(ctx); action != "" {
			return logger.With("action", action)
		}
		return logger
	}
	return slog.Default()
}

// WithAction tags the context with the store action that started the work.
func WithAction(ctx context.Context, action string) context.Context {
	if ctx == nil || action == "" {
		return ctx
	}
	return context.WithValue(ctx, actionKey, action)
}

// ActionFromContext returns the action stored by WithAction.
func ActionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if action, ok := ctx.Value(actionKey).(string); ok {
		return action
	}
	return ""
}
