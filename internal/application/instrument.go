package application

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	spanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// Instrument holds the telemetry a service reports through: a base logger
// with the service name bound, RED counters and histograms, and a tracer.
type Instrument struct {
	tracer observability.Tracer
	log    observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstrument(tel observability.Observability, service string) *Instrument {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Instrument{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Logger returns the request-scoped logger if one is on ctx.
func (i *Instrument) Logger(ctx context.Context) observability.Logger {
	return logctx.FromOr(ctx, i.log)
}

// Run tracks one use case execution from Begin until End.
type Run struct {
	inst    *Instrument
	ctx     context.Context
	span    trace.Span
	logger  observability.Logger
	useCase string
	start   time.Time
	outcome string
	status  string
	fields  []observability.Field
}

// Begin opens the span for useCase and returns the derived context. The
// caller must defer End with its named error result.
func (i *Instrument) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	logger := logctx.FromOr(ctx, i.log).With(observability.F("use_case", useCase))
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := i.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	ctx = logctx.With(ctx, logger)
	return ctx, &Run{
		inst:    i,
		ctx:     ctx,
		span:    span,
		logger:  logger,
		useCase: useCase,
		start:   time.Now(),
		outcome: "success",
		status:  "OK",
	}
}

func (r *Run) Span() trace.Span { return r.span }

func (r *Run) Logger() observability.Logger { return r.logger }

// Fail marks the run as failed with a machine readable status.
func (r *Run) Fail(status string) {
	r.outcome, r.status = "error", status
}

// Deny marks the run as rejected by an authorization check.
func (r *Run) Deny(status string) {
	r.outcome, r.status = "denied", status
}

// Note replaces the status while keeping the outcome.
func (r *Run) Note(status string) {
	r.status = status
}

// With attaches fields to the final use_case_done entry.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()
	if err != nil && r.outcome == "success" {
		r.outcome, r.status = "error", "FAILED"
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.inst.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.outcome),
	)
	r.inst.durHistogram.Observe(lat,
		observability.L("use_case", r.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	r.logger.Info("use_case_done", fields...)
}

// External times a call to an outside collaborator and records it under
// external_requests_total and external_request_duration_seconds.
func (i *Instrument) External(ctx context.Context, peer, endpoint string, call func(ctx context.Context) error) error {
	start := time.Now()
	err := call(ctx)
	outcome := "success"
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	i.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	i.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return err
}

// Publish hands e to the publisher with a short deadline. Failures are
// recorded on the run but never fail the use case.
func (r *Run) Publish(ctx context.Context, publisher domoutbox.Publisher, e domoutbox.Event) {
	if publisher == nil || e == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := r.inst.External(pubCtx, publishPeer, e.EventName(), func(ctx context.Context) error {
		return publisher.Publish(ctx, e)
	})
	if err != nil {
		if r.span != nil {
			r.span.RecordError(err)
		}
		r.Note("EVENT_PUBLISH_FAILED")
		r.With(observability.F("event_publish_error", err.Error()))
		r.logger.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
		return
	}
	if r.span != nil {
		r.span.AddEvent(e.EventName())
	}
}
