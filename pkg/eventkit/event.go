package eventkit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventkit/pkg/eventkit/observability"
)

// Listener receives the payload of a fire.
type Listener[T any] func(T)

// Predicate gates delivery for connections registered via Eval.
// It is called once per fire with the fire's payload; returning false
// skips the connection for that fire without consuming its count.
type Predicate[T any] func(T) bool

// Event is a typed in-process broadcast primitive.
//
// Listeners registered through Connect, Once, Limit, Eval, and Delay are
// invoked in registration order on every successful Fire. Callers can
// also block on the next fire via Wait and WaitUntil.
//
// Event is safe for concurrent use. The internal lock is never held
// across a listener callback, so listeners may call back into the event
// (including recursive Fire) without deadlocking.
//
// Example:
//
//	evt := eventkit.New[string](eventkit.WithName("greeting"))
//	conn := evt.Connect(func(s string) { fmt.Println("got:", s) })
//	evt.Fire("hello")
//	conn.Disconnect()
type Event[T any] struct {
	name string

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	onPanic        func(*ListenerPanicError)

	mu          sync.Mutex
	connections []*Connection[T]
	waiters     []chan T
	enabled     bool
	throttle    time.Duration
	lastFire    time.Time
}

// New creates an event for payload type T.
// The event starts enabled, unthrottled, and with no listeners.
func New[T any](opts ...Option) *Event[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.name == "" {
		cfg.name = "event-" + uuid.New().String()[:8]
	}

	return &Event[T]{
		name:           cfg.name,
		logger:         cfg.logger,
		metrics:        cfg.metrics,
		spans:          cfg.spans,
		tracingEnabled: cfg.tracingEnabled,
		onPanic:        cfg.onPanic,
		enabled:        true,
		throttle:       cfg.throttle,
	}
}

// Name returns the event name used in logs, metrics, and spans.
func (e *Event[T]) Name() string {
	return e.name
}

// Connect registers fn as a listener and returns its connection.
// The connection is the disconnect handle; Disconnect is idempotent.
//
// Panics if fn is nil.
func (e *Event[T]) Connect(fn Listener[T]) *Connection[T] {
	if fn == nil {
		panic("eventkit: listener cannot be nil")
	}
	return e.register(fn, nil, unlimited, 0)
}

// Once registers fn to be invoked at most once, then auto-disconnected.
// The at-most-once guarantee holds across concurrent fires.
//
// Panics if fn is nil.
func (e *Event[T]) Once(fn Listener[T]) *Connection[T] {
	if fn == nil {
		panic("eventkit: listener cannot be nil")
	}
	return e.register(fn, nil, 1, 0)
}

// Limit registers fn to be invoked at most amount times, then
// auto-disconnected. The exactly-n guarantee holds across concurrent
// fires. Returns an error wrapping ErrInvalidArgument if amount is not
// positive; no connection is registered in that case.
//
// Panics if fn is nil.
func (e *Event[T]) Limit(amount int, fn Listener[T]) (*Connection[T], error) {
	if fn == nil {
		panic("eventkit: listener cannot be nil")
	}
	if amount <= 0 {
		return nil, &InvalidArgumentError{
			Op:     "Limit",
			Reason: fmt.Sprintf("amount must be positive, got %d", amount),
		}
	}
	return e.register(fn, nil, int64(amount), 0), nil
}

// Eval registers fn to be invoked only on fires whose payload satisfies
// pred. The predicate runs during dispatch with panic isolation; a
// panicking predicate counts as false and is reported like a listener
// panic.
//
// Panics if pred or fn is nil.
func (e *Event[T]) Eval(pred Predicate[T], fn Listener[T]) *Connection[T] {
	if pred == nil {
		panic("eventkit: predicate cannot be nil")
	}
	if fn == nil {
		panic("eventkit: listener cannot be nil")
	}
	return e.register(fn, pred, unlimited, 0)
}

// Delay registers fn to be invoked d after each fire that selects it,
// on an independent timer. Delayed invocations block neither Fire nor
// other listeners and carry no ordering guarantee relative to them.
// A zero delay is valid and dispatches synchronously.
//
// Counted connections (see Limit) are charged when a fire selects them,
// not when the timer executes. An explicit Disconnect stops pending
// timers best-effort only: a timer that already fired still runs its
// callback.
//
// Returns an error wrapping ErrInvalidArgument if d is negative; no
// connection is registered in that case.
//
// Panics if fn is nil.
func (e *Event[T]) Delay(d time.Duration, fn Listener[T]) (*Connection[T], error) {
	if fn == nil {
		panic("eventkit: listener cannot be nil")
	}
	if d < 0 {
		return nil, &InvalidArgumentError{
			Op:     "Delay",
			Reason: fmt.Sprintf("duration must not be negative, got %s", d),
		}
	}
	return e.register(fn, nil, unlimited, d), nil
}

// register appends a new active connection under the event lock.
func (e *Event[T]) register(fn Listener[T], pred Predicate[T], remaining int64, delay time.Duration) *Connection[T] {
	conn := newConnection(e, fn, pred, remaining, delay)

	e.mu.Lock()
	e.connections = append(e.connections, conn)
	e.mu.Unlock()

	observability.LogConnect(e.logger, e.name, conn.id)
	return conn
}

// remove deletes conn from the connection list. Dispatch always iterates
// over a copied snapshot, so in-place removal here cannot corrupt an
// in-flight fire.
func (e *Event[T]) remove(conn *Connection[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, c := range e.connections {
		if c == conn {
			e.connections = append(e.connections[:i], e.connections[i+1:]...)
			return
		}
	}
}

// DisconnectAll deactivates and removes every connection.
//
// Pending waiters are unaffected: they are still released by the next
// successful fire. Delayed invocations already scheduled by an earlier
// fire are also unaffected and will still run.
func (e *Event[T]) DisconnectAll() {
	e.mu.Lock()
	conns := e.connections
	e.connections = nil
	e.mu.Unlock()

	for _, conn := range conns {
		conn.detach()
	}

	observability.LogDisconnectAll(e.logger, e.name, len(conns))
}

// Enable turns delivery on or off. While disabled, Fire returns
// immediately with no side effects: listeners are not invoked, waiters
// are not released, and the throttle timestamp is not updated.
//
// The flag takes effect on the next Fire call; a dispatch already in
// flight is not affected.
func (e *Event[T]) Enable(enabled bool) {
	e.mu.Lock()
	e.enabled = enabled
	e.mu.Unlock()
}

// Enabled reports whether the event is currently delivering fires.
func (e *Event[T]) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// SetThrottle enforces a minimum interval between successful fires.
// A fire arriving within interval of the last successful fire is
// suppressed with no side effects.
//
// The last-fire timestamp is left unchanged, so the very next fire may
// still be suppressed relative to the previous fire under the new
// window. Returns an error wrapping ErrInvalidArgument if interval is
// not positive; the current throttle is left unchanged in that case.
func (e *Event[T]) SetThrottle(interval time.Duration) error {
	if interval <= 0 {
		return &InvalidArgumentError{
			Op:     "SetThrottle",
			Reason: fmt.Sprintf("interval must be positive, got %s", interval),
		}
	}

	e.mu.Lock()
	e.throttle = interval
	e.mu.Unlock()
	return nil
}

// RemoveThrottle clears the throttle interval. Subsequent fires proceed
// unconditionally, subject to the enabled flag.
func (e *Event[T]) RemoveThrottle() {
	e.mu.Lock()
	e.throttle = 0
	e.mu.Unlock()
}

// Throttle returns the current throttle interval, or zero when unset.
func (e *Event[T]) Throttle() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.throttle
}

// ConnectionCount returns the number of registered connections.
func (e *Event[T]) ConnectionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.connections)
}

// WaiterCount returns the number of callers currently blocked in Wait
// or WaitUntil.
func (e *Event[T]) WaiterCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.waiters)
}
