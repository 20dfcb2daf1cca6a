package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the eventkit tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("eventkit")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartFireSpan starts a span for one fire dispatch.
	// Returns the context with span and the span itself.
	StartFireSpan(ctx context.Context, event string, listeners, waiters int) (context.Context, trace.Span)

	// StartListenerSpan starts a span for one listener invocation.
	// The listener span should be a child of the fire span.
	StartListenerSpan(ctx context.Context, event, connectionID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartFireSpan starts a span for one fire dispatch.
func (m *otelSpanManager) StartFireSpan(ctx context.Context, event string, listeners, waiters int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventkit.fire",
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.Int("event.listeners", listeners),
			attribute.Int("event.waiters", waiters),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartListenerSpan starts a span for one listener invocation.
func (m *otelSpanManager) StartListenerSpan(ctx context.Context, event, connectionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventkit.listener",
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.String("connection.id", connectionID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartFireSpan starts a span for one fire dispatch.
// Uses the global OTel tracer.
func StartFireSpan(ctx context.Context, event string, listeners, waiters int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventkit.fire",
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.Int("event.listeners", listeners),
			attribute.Int("event.waiters", waiters),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartListenerSpan starts a span for one listener invocation.
// Uses the global OTel tracer.
func StartListenerSpan(ctx context.Context, event, connectionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventkit.listener",
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.String("connection.id", connectionID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
