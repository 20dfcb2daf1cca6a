package eventkit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFire_DeliversPayload tests that each listener receives the payload.
func TestFire_DeliversPayload(t *testing.T) {
	evt := New[string]()
	var first, second capture[string]
	evt.Connect(first.listener())
	evt.Connect(second.listener())

	evt.Fire("hello")

	assert.Equal(t, []string{"hello"}, first.all())
	assert.Equal(t, []string{"hello"}, second.all())
}

// TestFire_RegistrationOrder tests listeners run in registration order.
func TestFire_RegistrationOrder(t *testing.T) {
	evt := New[int]()
	var order []string
	evt.Connect(func(int) { order = append(order, "a") })
	evt.Connect(func(int) { order = append(order, "b") })
	evt.Connect(func(int) { order = append(order, "c") })

	evt.Fire(0)
	evt.Fire(0)

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

// TestFire_NoListeners tests firing an event with no connections.
func TestFire_NoListeners(t *testing.T) {
	evt := New[int]()
	assert.NotPanics(t, func() {
		evt.Fire(42)
	})
}

// TestFireContext tests the context-carrying variant delivers normally.
func TestFireContext(t *testing.T) {
	evt := New[int]()
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.FireContext(context.Background(), 7)

	assert.Equal(t, []int{7}, calls.all())
}

// TestFire_Disabled tests that a disabled event drops fires entirely.
func TestFire_Disabled(t *testing.T) {
	evt := New[int]()
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Enable(false)
	evt.Fire(1)
	evt.Fire(2)
	assert.Equal(t, 0, calls.count())

	evt.Enable(true)
	evt.Fire(3)
	assert.Equal(t, []int{3}, calls.all())
}

// TestFire_DisabledDoesNotStartThrottleWindow tests that suppressed fires
// leave the throttle timestamp untouched.
func TestFire_DisabledDoesNotStartThrottleWindow(t *testing.T) {
	evt := New[int](WithThrottle(time.Hour))
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Enable(false)
	evt.Fire(1) // suppressed by the enabled flag, not a successful fire
	evt.Enable(true)

	evt.Fire(2) // first successful fire, window starts here
	assert.Equal(t, []int{2}, calls.all())
}

// TestFire_Throttle_SuppressesWithinWindow tests throttle suppression.
func TestFire_Throttle_SuppressesWithinWindow(t *testing.T) {
	evt := New[int](WithThrottle(time.Hour))
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Fire(1)
	evt.Fire(2)
	evt.Fire(3)

	assert.Equal(t, []int{1}, calls.all())
}

// TestFire_Throttle_ExpiresAfterWindow tests delivery resumes after the window.
func TestFire_Throttle_ExpiresAfterWindow(t *testing.T) {
	evt := New[int](WithThrottle(50 * time.Millisecond))
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Fire(1)
	time.Sleep(120 * time.Millisecond)
	evt.Fire(2)

	assert.Equal(t, []int{1, 2}, calls.all())
}

// TestFire_Throttle_SuppressedFireKeepsWindow tests that a suppressed fire
// does not restart the throttle window.
func TestFire_Throttle_SuppressedFireKeepsWindow(t *testing.T) {
	evt := New[int](WithThrottle(500 * time.Millisecond))
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Fire(1) // delivered, window starts
	time.Sleep(300 * time.Millisecond)
	evt.Fire(2) // suppressed, window must not move
	time.Sleep(300 * time.Millisecond)
	evt.Fire(3) // 600ms after the first fire, outside the original window

	assert.Equal(t, []int{1, 3}, calls.all())
}

// TestFire_RemoveThrottle tests that clearing the throttle resumes delivery.
func TestFire_RemoveThrottle(t *testing.T) {
	evt := New[int](WithThrottle(time.Hour))
	var calls capture[int]
	evt.Connect(calls.listener())

	evt.Fire(1)
	evt.Fire(2) // throttled
	evt.RemoveThrottle()
	evt.Fire(3)

	assert.Equal(t, []int{1, 3}, calls.all())
}

// TestFire_ConnectDuringDispatch tests that a listener registered during a
// fire is not invoked until the next fire.
func TestFire_ConnectDuringDispatch(t *testing.T) {
	evt := New[int]()
	var invoked []string
	registered := false
	evt.Connect(func(int) {
		invoked = append(invoked, "outer")
		if !registered {
			registered = true
			evt.Connect(func(int) { invoked = append(invoked, "inner") })
		}
	})

	evt.Fire(0)
	assert.Equal(t, []string{"outer"}, invoked)

	evt.Fire(0)
	assert.Equal(t, []string{"outer", "outer", "inner"}, invoked)
}

// TestFire_DisconnectOtherDuringDispatch tests that disconnecting a later
// listener mid-fire does not skip its delivery for the in-flight snapshot.
func TestFire_DisconnectOtherDuringDispatch(t *testing.T) {
	evt := New[int]()
	var invoked []string
	var connB *Connection[int]
	evt.Connect(func(int) {
		invoked = append(invoked, "a")
		connB.Disconnect()
	})
	connB = evt.Connect(func(int) { invoked = append(invoked, "b") })

	evt.Fire(0)
	assert.Equal(t, []string{"a", "b"}, invoked, "snapshot delivery must complete")

	evt.Fire(0)
	assert.Equal(t, []string{"a", "b", "a"}, invoked)
}

// TestFire_SelfDisconnectDuringDispatch tests a listener disconnecting itself.
func TestFire_SelfDisconnectDuringDispatch(t *testing.T) {
	evt := New[int]()
	var count int
	var conn *Connection[int]
	conn = evt.Connect(func(int) {
		count++
		conn.Disconnect()
	})

	evt.Fire(0)
	evt.Fire(0)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, evt.ConnectionCount())
}

// TestFire_Recursive tests a listener firing the same event recursively.
func TestFire_Recursive(t *testing.T) {
	evt := New[int]()
	var depths []int
	evt.Connect(func(depth int) {
		depths = append(depths, depth)
		if depth < 3 {
			evt.Fire(depth + 1)
		}
	})

	evt.Fire(1)

	assert.Equal(t, []int{1, 2, 3}, depths)
}

// TestFire_ListenerPanic_Isolated tests that one panicking listener does not
// abort delivery to the others.
func TestFire_ListenerPanic_Isolated(t *testing.T) {
	var reported *ListenerPanicError
	evt := New[string](WithPanicReporter(func(p *ListenerPanicError) { reported = p }))

	var before, after capture[string]
	evt.Connect(before.listener())
	panicking := evt.Connect(makePanicListener[string]("kaboom"))
	evt.Connect(after.listener())

	assert.NotPanics(t, func() {
		evt.Fire("x")
	})

	assert.Equal(t, []string{"x"}, before.all())
	assert.Equal(t, []string{"x"}, after.all())

	require.NotNil(t, reported)
	assert.Equal(t, evt.Name(), reported.Event)
	assert.Equal(t, panicking.ID(), reported.ConnectionID)
	assert.Equal(t, "kaboom", reported.Value)
	assert.Contains(t, reported.Stack, "makePanicListener")
}

// TestFire_ListenerPanic_NonStringValue tests panic with a non-string value.
func TestFire_ListenerPanic_NonStringValue(t *testing.T) {
	var reported *ListenerPanicError
	evt := New[int](WithPanicReporter(func(p *ListenerPanicError) { reported = p }))
	evt.Connect(makePanicListener[int](42))

	evt.Fire(0)

	require.NotNil(t, reported)
	assert.Equal(t, 42, reported.Value)
}

// TestFire_PredicatePanic_CountsAsFalse tests that a panicking predicate
// skips delivery without deactivating the connection.
func TestFire_PredicatePanic_CountsAsFalse(t *testing.T) {
	var panics int
	evt := New[int](WithPanicReporter(func(*ListenerPanicError) { panics++ }))

	var calls capture[int]
	conn := evt.Eval(func(n int) bool {
		if n == 0 {
			panic("bad predicate")
		}
		return true
	}, calls.listener())

	evt.Fire(0)
	assert.Equal(t, 0, calls.count())
	assert.Equal(t, 1, panics)
	assert.True(t, conn.Connected())

	evt.Fire(7)
	assert.Equal(t, []int{7}, calls.all())
}

// TestFire_PanicDoesNotBlockWaiterRelease tests waiters are released even
// when every listener panics.
func TestFire_PanicDoesNotBlockWaiterRelease(t *testing.T) {
	evt := New[int](WithPanicReporter(func(*ListenerPanicError) {}))
	evt.Connect(makePanicListener[int]("boom"))

	type waitResult struct {
		value int
		err   error
	}
	res := make(chan waitResult, 1)
	go func() {
		v, err := evt.Wait(context.Background())
		res <- waitResult{v, err}
	}()
	waitFor(t, time.Second, func() bool { return evt.WaiterCount() == 1 }, "waiter did not register")

	evt.Fire(42)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.Equal(t, 42, r.value)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}

// TestFire_Concurrent tests concurrent fires deliver without loss.
func TestFire_Concurrent(t *testing.T) {
	evt := New[int]()
	var count atomic.Int64
	evt.Connect(func(int) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			evt.Fire(0)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), count.Load())
}

// TestFire_Logging tests the structured log records emitted around a fire.
func TestFire_Logging(t *testing.T) {
	h := newTestLogHandler()
	evt := New[int](WithName("metrics.tick"), WithLogger(slog.New(h)))
	evt.Connect(func(int) {})
	evt.Connect(func(int) {})

	evt.Fire(1)

	records := h.getRecords()
	require.NotEmpty(t, records)

	var connects int
	var foundFire bool
	for _, r := range records {
		msg, _ := r["msg"].(string)
		switch msg {
		case "listener connected":
			connects++
			assert.Equal(t, "metrics.tick", r["event"])
		case "event fired":
			foundFire = true
			assert.Equal(t, "metrics.tick", r["event"])
			assert.Equal(t, float64(2), r["listeners"])
			assert.Equal(t, float64(0), r["waiters"])
		}
	}
	assert.Equal(t, 2, connects, "expected 2 'listener connected' logs")
	assert.True(t, foundFire, "expected 'event fired' log")
}

// TestFire_SuppressionLogging tests the suppression reasons in log records.
func TestFire_SuppressionLogging(t *testing.T) {
	h := newTestLogHandler()
	evt := New[int](WithName("gated"), WithLogger(slog.New(h)))

	evt.Enable(false)
	evt.Fire(1)

	evt.Enable(true)
	require.NoError(t, evt.SetThrottle(time.Hour))
	evt.Fire(2) // delivered, starts the window
	evt.Fire(3) // throttled

	var reasons []string
	for _, r := range h.getRecords() {
		if msg, _ := r["msg"].(string); msg == "fire suppressed" {
			reason, _ := r["reason"].(string)
			reasons = append(reasons, reason)
		}
	}
	assert.Equal(t, []string{"disabled", "throttled"}, reasons)
}
