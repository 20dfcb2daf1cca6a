package eventkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInvalidArgumentError_Error tests InvalidArgumentError formatting.
func TestInvalidArgumentError_Error(t *testing.T) {
	err := &InvalidArgumentError{
		Op:     "Limit",
		Reason: "amount must be positive, got 0",
	}

	assert.Equal(t, "Limit: amount must be positive, got 0", err.Error())
}

// TestInvalidArgumentError_Unwrap tests InvalidArgumentError unwrapping.
func TestInvalidArgumentError_Unwrap(t *testing.T) {
	err := &InvalidArgumentError{
		Op:     "SetThrottle",
		Reason: "interval must be positive, got -1s",
	}

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestListenerPanicError_Error tests ListenerPanicError formatting.
func TestListenerPanicError_Error(t *testing.T) {
	err := &ListenerPanicError{
		Event:        "order.placed",
		ConnectionID: "conn-1",
		Value:        "unexpected nil",
		Stack:        "goroutine 1 [running]:\n...",
	}

	assert.Equal(t, "event order.placed: listener conn-1 panicked: unexpected nil", err.Error())
}

// TestListenerPanicError_NonStringValue tests formatting of non-string panic values.
func TestListenerPanicError_NonStringValue(t *testing.T) {
	err := &ListenerPanicError{
		Event:        "sensor.sample",
		ConnectionID: "conn-2",
		Value:        42,
	}

	assert.Equal(t, "event sensor.sample: listener conn-2 panicked: 42", err.Error())
}

// TestListenerPanicError_NotInvalidArgument tests the panic error does not
// match the argument sentinel.
func TestListenerPanicError_NotInvalidArgument(t *testing.T) {
	err := &ListenerPanicError{Event: "e", ConnectionID: "c", Value: "v"}
	assert.False(t, errors.Is(err, ErrInvalidArgument))
}
