package eventkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for argument validation.
var (
	// ErrInvalidArgument indicates an operation was called with an
	// out-of-range argument (non-positive limit, negative delay,
	// non-positive throttle interval).
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidArgumentError provides context when argument validation fails.
// It reports which operation rejected the argument and why.
type InvalidArgumentError struct {
	// Op is the operation that rejected the argument ("Limit", "Delay", "SetThrottle").
	Op string
	// Reason describes the rejected value.
	Reason string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Unwrap returns ErrInvalidArgument for errors.Is support.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// ListenerPanicError captures panic information from a listener callback
// or predicate. It includes the stack trace for debugging.
//
// Panics are recovered per connection during dispatch: one panicking
// listener never prevents later listeners in the same fire, and never
// prevents waiter release. The error is logged at error level and passed
// to the WithPanicReporter callback when one is configured.
type ListenerPanicError struct {
	// Event is the name of the event being fired.
	Event string
	// ConnectionID identifies the connection whose callback panicked.
	ConnectionID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *ListenerPanicError) Error() string {
	return fmt.Sprintf("event %s: listener %s panicked: %v", e.Event, e.ConnectionID, e.Value)
}
