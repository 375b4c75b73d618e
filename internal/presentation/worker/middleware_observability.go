package workerpresentation

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

// withEventLogger stores an event-scoped logger on ctx. Trace ids are taken
// from the publisher's span when one travelled with the event.
func withEventLogger(ctx context.Context, base observability.Logger, eventID string, e domoutbox.Event) context.Context {
	fields := []observability.Field{
		observability.F("event_id", eventID),
		observability.F("event", e.EventName()),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	return logctx.With(ctx, base.With(fields...))
}
