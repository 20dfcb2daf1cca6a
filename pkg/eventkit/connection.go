package eventkit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// unlimited marks a connection with no delivery count.
const unlimited int64 = -1

// Connection is one registered listener plus its gating metadata.
// It is the disconnect handle returned by the registration operations.
//
// A connection moves through exactly one transition, Active to
// Disconnected, reached via explicit Disconnect, count exhaustion
// (Once/Limit), or the event's DisconnectAll. There is no way back.
type Connection[T any] struct {
	id        string
	callback  Listener[T]
	evaluator Predicate[T]
	delay     time.Duration

	active atomic.Bool
	// remaining counts deliveries left; negative means unlimited.
	// Decremented at claim time so the count holds across concurrent
	// and recursive fires.
	remaining atomic.Int64

	mu     sync.Mutex
	owner  *Event[T]
	timers map[*time.Timer]struct{}
}

// newConnection creates an active connection owned by evt.
func newConnection[T any](evt *Event[T], fn Listener[T], pred Predicate[T], remaining int64, delay time.Duration) *Connection[T] {
	conn := &Connection[T]{
		id:        uuid.New().String(),
		callback:  fn,
		evaluator: pred,
		delay:     delay,
		owner:     evt,
	}
	conn.active.Store(true)
	conn.remaining.Store(remaining)
	return conn
}

// ID returns the connection's unique identifier, used in logs, metrics,
// and panic reports.
func (c *Connection[T]) ID() string {
	return c.id
}

// Connected reports whether the connection is still active.
// A counted connection reports false as soon as its final delivery is
// claimed, even if that delivery is a delayed invocation that has not
// run yet.
func (c *Connection[T]) Connected() bool {
	return c.active.Load()
}

// Disconnect deactivates the connection and removes it from its event.
// Safe to call multiple times; repeat calls are no-ops. Safe to call
// from a listener during dispatch: delivery already computed for the
// in-flight fire's snapshot still happens.
//
// Pending delayed invocations are cancelled best-effort: a timer that
// already fired still runs its callback.
func (c *Connection[T]) Disconnect() {
	if !c.active.CompareAndSwap(true, false) {
		return
	}

	c.mu.Lock()
	owner := c.owner
	c.owner = nil
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	for timer := range timers {
		timer.Stop()
	}
	if owner != nil {
		owner.remove(c)
	}
}

// exhaust deactivates a counted connection whose final delivery was just
// claimed. Pending timers are left alone so a claimed delayed delivery
// still runs.
func (c *Connection[T]) exhaust() {
	if !c.active.CompareAndSwap(true, false) {
		return
	}

	c.mu.Lock()
	owner := c.owner
	c.owner = nil
	c.mu.Unlock()

	if owner != nil {
		owner.remove(c)
	}
}

// detach deactivates without removing from the event's list (the caller
// already cleared it wholesale) and without touching pending timers.
// Used by DisconnectAll.
func (c *Connection[T]) detach() {
	if !c.active.CompareAndSwap(true, false) {
		return
	}

	c.mu.Lock()
	c.owner = nil
	c.mu.Unlock()
}

// claim reserves one delivery slot for the current fire. Returns false
// when the connection's counted deliveries are exhausted (a concurrent
// fire may have claimed the last slot). The final claim deactivates the
// connection before its callback runs.
func (c *Connection[T]) claim() bool {
	for {
		r := c.remaining.Load()
		if r < 0 {
			return true
		}
		if r == 0 {
			return false
		}
		if c.remaining.CompareAndSwap(r, r-1) {
			if r == 1 {
				c.exhaust()
			}
			return true
		}
	}
}

// schedule runs fn after the connection's delay on an independent timer.
// The timer is tracked so an explicit Disconnect can stop it.
func (c *Connection[T]) schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timers == nil {
		c.timers = make(map[*time.Timer]struct{})
	}

	var timer *time.Timer
	timer = time.AfterFunc(c.delay, func() {
		// Lock ordering with schedule guarantees timer is assigned and
		// registered before this body can observe it.
		c.mu.Lock()
		delete(c.timers, timer)
		c.mu.Unlock()
		fn()
	})
	c.timers[timer] = struct{}{}
}
