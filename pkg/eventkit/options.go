package eventkit

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/eventkit/pkg/eventkit/observability"
)

// config holds construction-time settings for an event.
type config struct {
	name           string
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	throttle       time.Duration
	onPanic        func(*ListenerPanicError)
}

// defaultConfig returns the default event configuration.
// Observability is off: no logger, no-op metrics and spans.
func defaultConfig() config {
	return config{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures event construction.
type Option func(*config)

// WithName sets the event name used in logs, metrics, and spans.
// Default: "event-" plus a short unique suffix.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the structured logger for dispatch activity.
// A nil logger (the default) disables logging.
//
// Example:
//
//	evt := eventkit.New[int](eventkit.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for fires, deliveries,
// listener panics, and waits.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before constructing the event:
//
//	otel.SetMeterProvider(yourProvider)
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans around fires and listener
// invocations.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before constructing the event:
//
//	otel.SetTracerProvider(yourProvider)
func WithTracing(enabled bool) Option {
	return func(c *config) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithThrottle sets an initial throttle interval, as if SetThrottle had
// been called right after construction. Non-positive values are ignored.
func WithThrottle(interval time.Duration) Option {
	return func(c *config) {
		if interval > 0 {
			c.throttle = interval
		}
	}
}

// WithPanicReporter registers a callback invoked whenever a listener or
// predicate panics during dispatch. The reporter runs on the goroutine
// that recovered the panic and must not itself panic.
func WithPanicReporter(fn func(*ListenerPanicError)) Option {
	return func(c *config) {
		c.onPanic = fn
	}
}
