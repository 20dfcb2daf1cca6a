package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records eventkit metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFire records a successful fire with its dispatch duration and
	// the number of listeners in the snapshot.
	RecordFire(ctx context.Context, event string, duration time.Duration, listeners int)

	// RecordFireSuppressed records a fire gated off before dispatch.
	// Reason is "disabled" or "throttled".
	RecordFireSuppressed(ctx context.Context, event, reason string)

	// RecordDelivery records one listener invocation with its duration,
	// whether it ran on a delay timer, and its error status (a recovered
	// panic).
	RecordDelivery(ctx context.Context, event string, duration time.Duration, delayed bool, err error)

	// RecordWaiterReleases records waiters released by a fire.
	RecordWaiterReleases(ctx context.Context, event string, count int)

	// RecordWait records a completed Wait or WaitUntil call.
	// Outcome is "fired", "timeout", or "cancelled".
	RecordWait(ctx context.Context, event, outcome string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	fires           metric.Int64Counter
	fireLatency     metric.Float64Histogram
	firesSuppressed metric.Int64Counter
	deliveries      metric.Int64Counter
	deliveryLatency metric.Float64Histogram
	listenerPanics  metric.Int64Counter
	waiterReleases  metric.Int64Counter
	waits           metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventkit")

	fires, err := meter.Int64Counter("eventkit.fires",
		metric.WithDescription("Number of successful fires"),
	)
	if err != nil {
		return nil, err
	}

	fireLatency, err := meter.Float64Histogram("eventkit.fire.latency_ms",
		metric.WithDescription("Fire dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	firesSuppressed, err := meter.Int64Counter("eventkit.fires.suppressed",
		metric.WithDescription("Number of fires suppressed by the enabled flag or throttle"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("eventkit.deliveries",
		metric.WithDescription("Number of listener invocations"),
	)
	if err != nil {
		return nil, err
	}

	deliveryLatency, err := meter.Float64Histogram("eventkit.delivery.latency_ms",
		metric.WithDescription("Listener invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerPanics, err := meter.Int64Counter("eventkit.listener.panics",
		metric.WithDescription("Number of recovered listener panics"),
	)
	if err != nil {
		return nil, err
	}

	waiterReleases, err := meter.Int64Counter("eventkit.waiter.releases",
		metric.WithDescription("Number of waiters released by fires"),
	)
	if err != nil {
		return nil, err
	}

	waits, err := meter.Int64Counter("eventkit.waits",
		metric.WithDescription("Number of completed Wait/WaitUntil calls"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		fires:           fires,
		fireLatency:     fireLatency,
		firesSuppressed: firesSuppressed,
		deliveries:      deliveries,
		deliveryLatency: deliveryLatency,
		listenerPanics:  listenerPanics,
		waiterReleases:  waiterReleases,
		waits:           waits,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordFire records a successful fire.
func (m *otelMetrics) RecordFire(ctx context.Context, event string, duration time.Duration, listeners int) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
	}

	m.fires.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.fireLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordFireSuppressed records a suppressed fire.
func (m *otelMetrics) RecordFireSuppressed(ctx context.Context, event, reason string) {
	m.firesSuppressed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("reason", reason),
	))
}

// RecordDelivery records one listener invocation.
func (m *otelMetrics) RecordDelivery(ctx context.Context, event string, duration time.Duration, delayed bool, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
		attribute.Bool("delayed", delayed),
	}

	m.deliveries.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.deliveryLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.listenerPanics.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event", event),
		))
	}
}

// RecordWaiterReleases records waiters released by a fire.
func (m *otelMetrics) RecordWaiterReleases(ctx context.Context, event string, count int) {
	m.waiterReleases.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("event", event),
	))
}

// RecordWait records a completed wait.
func (m *otelMetrics) RecordWait(ctx context.Context, event, outcome string) {
	m.waits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}
