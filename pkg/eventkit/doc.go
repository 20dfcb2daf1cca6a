/*
Package eventkit provides a typed in-process publish/subscribe primitive.

# Overview

eventkit is a Go library for decoupled signaling inside a single process.
An Event[T] is a broadcast channel for one payload type: producers call
Fire, and registered listeners receive the payload in registration order.
Callers can also block on the next fire with Wait or WaitUntil.

The library is built around:
  - Type-safe generics for the fire payload
  - Per-connection gating: one-shot, counted, predicate-filtered, delayed
  - Snapshot dispatch so listeners can disconnect safely mid-fire
  - OpenTelemetry integration for observability

# Basic Usage

Create an event, connect listeners, and fire:

	type Order struct {
	    ID    string
	    Total int
	}

	func main() {
	    placed := eventkit.New[Order]()

	    conn := placed.Connect(func(o Order) {
	        fmt.Println("order placed:", o.ID)
	    })
	    defer conn.Disconnect()

	    placed.Fire(Order{ID: "ord-1", Total: 250})
	}

Events with multiple logical arguments use a struct payload; the type
parameter is fixed at construction and checked at compile time.

# Gated Listeners

Once fires a listener at most once, Limit at most n times, Eval only when
a predicate accepts the payload, and Delay on an independent timer:

	placed.Once(func(o Order) { fmt.Println("first order!") })

	conn, err := placed.Limit(3, func(o Order) { notify(o) })

	placed.Eval(func(o Order) bool { return o.Total > 1000 },
	    func(o Order) { flagForReview(o) })

	conn, err = placed.Delay(5*time.Second, func(o Order) { remind(o) })

Once and Limit deactivate their connection when the count is exhausted,
even across concurrent fires. Eval rejections do not consume the count.

# Waiting

Wait blocks the calling goroutine until the next successful fire:

	o, err := placed.Wait(ctx)            // until fire or ctx done
	o, ok := placed.WaitUntil(2 * time.Second) // until fire or timeout

Every waiter registered before a fire receives that fire's payload.
A Wait with context.Background() never times out; if the event never
fires again the caller stays blocked, which is the caller's
responsibility to avoid.

# Gating the Event Itself

Enable(false) makes Fire a no-op until re-enabled. SetThrottle enforces a
minimum interval between successful fires; suppressed fires have no side
effects at all:

	placed.SetThrottle(100 * time.Millisecond)
	placed.Fire(a) // delivered
	placed.Fire(b) // suppressed: within the throttle window
	placed.RemoveThrottle()

# Error Handling

Argument validation failures are reported through ErrInvalidArgument:

	if _, err := placed.Limit(0, handler); errors.Is(err, eventkit.ErrInvalidArgument) {
	    // non-positive amount
	}

Listener panics never abort a fire. Each panic is recovered, logged, and
surfaced as a *ListenerPanicError through the WithPanicReporter callback:

	evt := eventkit.New[Order](
	    eventkit.WithPanicReporter(func(p *eventkit.ListenerPanicError) {
	        log.Printf("listener %s panicked: %v", p.ConnectionID, p.Value)
	    }))

# Observability

Enable logging, metrics, and tracing:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	evt := eventkit.New[Order](
	    eventkit.WithName("order.placed"),
	    eventkit.WithLogger(logger),
	    eventkit.WithMetrics(true),
	    eventkit.WithTracing(true))

Logs include structured fields: event, connection_id, duration_ms.
OpenTelemetry metrics: eventkit.fires, eventkit.deliveries, etc.
OpenTelemetry tracing: eventkit.fire > eventkit.listener spans.

# Thread Safety

  - Event[T] IS safe for concurrent use by multiple goroutines
  - Connection[T] methods are safe to call from any goroutine, including
    from listeners during a fire
  - Dispatch never holds the event lock across a listener call, so
    listeners may fire, connect, and disconnect freely

# Subpackages

  - config: YAML/JSON settings files for named events
  - hub: name-keyed registry of events sharing a payload type
  - journal: audit trail of fires (memory, SQLite)
  - observability: logging, metrics, and tracing helpers
*/
package eventkit
