package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordFire does nothing.
func (NoopMetrics) RecordFire(_ context.Context, _ string, _ time.Duration, _ int) {}

// RecordFireSuppressed does nothing.
func (NoopMetrics) RecordFireSuppressed(_ context.Context, _, _ string) {}

// RecordDelivery does nothing.
func (NoopMetrics) RecordDelivery(_ context.Context, _ string, _ time.Duration, _ bool, _ error) {}

// RecordWaiterReleases does nothing.
func (NoopMetrics) RecordWaiterReleases(_ context.Context, _ string, _ int) {}

// RecordWait does nothing.
func (NoopMetrics) RecordWait(_ context.Context, _, _ string) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartFireSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFireSpan(ctx context.Context, _ string, _, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartListenerSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartListenerSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
