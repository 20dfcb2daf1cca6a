// Package observability provides production-grade observability features
// for eventkit: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds eventkit context to a logger.
// Returns a new logger with event and connection_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "order.placed", conn.ID())
//	enriched.Info("doing work") // includes event, connection_id
func EnrichLogger(logger *slog.Logger, event, connectionID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", event),
		slog.String("connection_id", connectionID),
	)
}

// LogConnect logs a new listener registration.
func LogConnect(logger *slog.Logger, event, connectionID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener connected",
		slog.String("event", event),
		slog.String("connection_id", connectionID),
	)
}

// LogDisconnectAll logs removal of every connection on an event.
func LogDisconnectAll(logger *slog.Logger, event string, count int) {
	if logger == nil {
		return
	}
	logger.Debug("all listeners disconnected",
		slog.String("event", event),
		slog.Int("connections", count),
	)
}

// LogFire logs a completed fire.
func LogFire(logger *slog.Logger, event string, listeners, waiters int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event fired",
		slog.String("event", event),
		slog.Int("listeners", listeners),
		slog.Int("waiters", waiters),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFireSuppressed logs a fire that was gated off before dispatch.
// Reason is "disabled" or "throttled".
func LogFireSuppressed(logger *slog.Logger, event, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("fire suppressed",
		slog.String("event", event),
		slog.String("reason", reason),
	)
}

// LogListenerPanic logs a recovered panic from a listener or predicate.
func LogListenerPanic(logger *slog.Logger, event, connectionID string, value any) {
	if logger == nil {
		return
	}
	logger.Error("listener panicked",
		slog.String("event", event),
		slog.String("connection_id", connectionID),
		slog.Any("panic", value),
	)
}

// LogWaiterRelease logs the release of blocked waiters by a fire.
func LogWaiterRelease(logger *slog.Logger, event string, count int) {
	if logger == nil {
		return
	}
	logger.Debug("waiters released",
		slog.String("event", event),
		slog.Int("count", count),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
