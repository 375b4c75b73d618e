// Package logctx carries the request- or event-scoped logger through context.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

type loggerKey struct{}

func With(ctx context.Context, logger observability.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

func From(ctx context.Context) observability.Logger {
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr falls back to base when ctx carries no logger.
func FromOr(ctx context.Context, base observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return base
}

// Enrich appends fields to the scoped logger, for values learned mid-request
// such as the verified caller.
func Enrich(ctx context.Context, base observability.Logger, fields ...observability.Field) context.Context {
	logger := FromOr(ctx, base)
	if logger == nil || len(fields) == 0 {
		return ctx
	}
	return With(ctx, logger.With(fields...))
}
