package eventkit

import (
	"context"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/eventkit/pkg/eventkit/observability"
)

// Fire broadcasts args to all registered listeners and releases all
// pending waiters with the same value.
//
// Fire is a no-op when the event is disabled or when a throttle window
// suppresses it; suppressed fires leave all state untouched. Otherwise
// listeners from a snapshot of the current connections are invoked in
// registration order, then every waiter registered before this call
// receives args. Fire returns after the synchronous listeners and the
// waiter release have completed; delayed listeners run on their own
// timers.
func (e *Event[T]) Fire(args T) {
	e.FireContext(context.Background(), args)
}

// FireContext is Fire with a caller-supplied context. The context is
// used only for observability (span parentage, metric exemplars); it
// does not cancel dispatch.
func (e *Event[T]) FireContext(ctx context.Context, args T) {
	e.mu.Lock()

	if !e.enabled {
		e.mu.Unlock()
		observability.LogFireSuppressed(e.logger, e.name, "disabled")
		e.metrics.RecordFireSuppressed(ctx, e.name, "disabled")
		return
	}

	now := time.Now()
	if e.throttle > 0 && !e.lastFire.IsZero() && now.Sub(e.lastFire) < e.throttle {
		e.mu.Unlock()
		observability.LogFireSuppressed(e.logger, e.name, "throttled")
		e.metrics.RecordFireSuppressed(ctx, e.name, "throttled")
		return
	}
	e.lastFire = now

	// Snapshot the connections and detach the waiter set in one
	// critical section. Dispatch then runs lock-free: listeners may
	// connect, disconnect, and fire recursively, and waiters arriving
	// during dispatch belong to the next fire.
	snapshot := make([]*Connection[T], len(e.connections))
	copy(snapshot, e.connections)
	waiters := e.waiters
	e.waiters = nil
	e.mu.Unlock()

	var span trace.Span
	if e.tracingEnabled {
		ctx, span = e.spans.StartFireSpan(ctx, e.name, len(snapshot), len(waiters))
	}
	start := time.Now()

	for _, conn := range snapshot {
		e.dispatch(ctx, conn, args)
	}

	// Waiter release happens regardless of listener outcomes: panics
	// were recovered per connection above.
	for _, ch := range waiters {
		ch <- args
	}
	if len(waiters) > 0 {
		observability.LogWaiterRelease(e.logger, e.name, len(waiters))
		e.metrics.RecordWaiterReleases(ctx, e.name, len(waiters))
	}

	duration := time.Since(start)
	e.metrics.RecordFire(ctx, e.name, duration, len(snapshot))
	if e.tracingEnabled {
		e.spans.EndSpanWithError(span, nil)
	}
	observability.LogFire(e.logger, e.name, len(snapshot), len(waiters), float64(duration.Milliseconds()))
}

// dispatch delivers one fire to one snapshot connection: predicate
// first, then the delivery claim, then the invocation (immediate or on
// the connection's delay timer).
func (e *Event[T]) dispatch(ctx context.Context, conn *Connection[T], args T) {
	if conn.evaluator != nil && !e.evaluate(conn, args) {
		return
	}
	if !conn.claim() {
		return
	}

	if conn.delay > 0 {
		conn.schedule(func() {
			e.invoke(ctx, conn, args, true)
		})
		return
	}
	e.invoke(ctx, conn, args, false)
}

// evaluate runs the connection's predicate with panic isolation.
// A panicking predicate counts as false and does not consume the
// connection's delivery count.
func (e *Event[T]) evaluate(conn *Connection[T], args T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			e.reportPanic(conn, r, debug.Stack())
		}
	}()
	return conn.evaluator(args)
}

// invoke runs the connection's callback with panic isolation, metrics,
// and an optional listener span.
func (e *Event[T]) invoke(ctx context.Context, conn *Connection[T], args T, delayed bool) {
	var span trace.Span
	if e.tracingEnabled {
		ctx, span = e.spans.StartListenerSpan(ctx, e.name, conn.id)
	}

	start := time.Now()
	err := e.safeCall(conn, args)
	e.metrics.RecordDelivery(ctx, e.name, time.Since(start), delayed, err)

	if e.tracingEnabled {
		e.spans.EndSpanWithError(span, err)
	}
}

// safeCall invokes the callback, converting a panic into a
// *ListenerPanicError so one failing listener cannot abort the fire.
func (e *Event[T]) safeCall(conn *Connection[T], args T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.reportPanic(conn, r, debug.Stack())
		}
	}()
	conn.callback(args)
	return nil
}

// reportPanic surfaces a recovered panic through the logger and the
// configured panic reporter. Callback panics additionally reach the
// metrics recorder through the delivery error count in invoke.
func (e *Event[T]) reportPanic(conn *Connection[T], value any, stack []byte) *ListenerPanicError {
	perr := &ListenerPanicError{
		Event:        e.name,
		ConnectionID: conn.id,
		Value:        value,
		Stack:        string(stack),
	}
	observability.LogListenerPanic(e.logger, e.name, conn.id, value)
	if e.onPanic != nil {
		e.onPanic(perr)
	}
	return perr
}
