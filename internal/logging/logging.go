package logging

import (
	"context"
	"log/slog"
)

// loggerKey is the private context key under which request loggers travel.
type loggerKey struct{}

// ContextWithLogger attaches logger to ctx so downstream code can emit
// records with the request's attributes already bound. A nil logger leaves
// the context untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or nil when none was
// attached. Callers fall back to their own default logger on nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
