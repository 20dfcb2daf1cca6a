package eventkit

import (
	"context"
	"time"
)

// Wait blocks until the next successful fire and returns its payload.
//
// The wait ends when a fire delivers a value or when ctx is done,
// whichever happens first; the loser of that race is cancelled. With
// context.Background() the call never times out: if the event never
// fires again the caller stays blocked, which is the caller's
// responsibility to avoid.
//
// A waiter registered while a fire is dispatching is released by the
// next fire, not the one in flight.
func (e *Event[T]) Wait(ctx context.Context) (T, error) {
	ch := e.addWaiter()

	select {
	case args := <-ch:
		e.metrics.RecordWait(ctx, e.name, "fired")
		return args, nil
	case <-ctx.Done():
		if e.removeWaiter(ch) {
			e.metrics.RecordWait(ctx, e.name, "cancelled")
			var zero T
			return zero, ctx.Err()
		}
		// A fire claimed this waiter before the cancellation could;
		// the value is in flight and delivery wins.
		args := <-ch
		e.metrics.RecordWait(ctx, e.name, "fired")
		return args, nil
	}
}

// WaitUntil blocks until the next successful fire or until timeout
// elapses. It returns the fired payload and true, or the zero value and
// false on timeout. The timeout is a normal outcome, not an error.
//
// Exactly one resolution path wins. A fire that claims the waiter just
// as the timer expires still delivers: the value is taken and reported
// as a successful wait. A non-positive timeout expires immediately.
func (e *Event[T]) WaitUntil(timeout time.Duration) (T, bool) {
	ch := e.addWaiter()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case args := <-ch:
		e.metrics.RecordWait(context.Background(), e.name, "fired")
		return args, true
	case <-timer.C:
		if e.removeWaiter(ch) {
			e.metrics.RecordWait(context.Background(), e.name, "timeout")
			var zero T
			return zero, false
		}
		args := <-ch
		e.metrics.RecordWait(context.Background(), e.name, "fired")
		return args, true
	}
}

// addWaiter registers a single-use waiter channel. Capacity 1 lets the
// firing goroutine deliver without blocking on the receiver.
func (e *Event[T]) addWaiter() chan T {
	ch := make(chan T, 1)
	e.mu.Lock()
	e.waiters = append(e.waiters, ch)
	e.mu.Unlock()
	return ch
}

// removeWaiter claims the waiter for its caller. It reports whether the
// waiter was still registered; false means a fire already detached it,
// so the fired value is (or will shortly be) available on the channel.
func (e *Event[T]) removeWaiter(ch chan T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, w := range e.waiters {
		if w == ch {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return true
		}
	}
	return false
}
