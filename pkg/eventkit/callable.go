package eventkit

// Callback wraps a single function of one argument and one result as a
// value that can be stored, passed around, and invoked. It exists as a
// boundary contract for callers that want to hand a callable to code
// firing events; it has no connection or lifecycle state.
type Callback[T, R any] struct {
	fn func(T) R
}

// NewCallback wraps fn. Panics if fn is nil.
func NewCallback[T, R any](fn func(T) R) Callback[T, R] {
	if fn == nil {
		panic("eventkit: callback function cannot be nil")
	}
	return Callback[T, R]{fn: fn}
}

// Invoke calls the wrapped function with args and returns its result.
func (c Callback[T, R]) Invoke(args T) R {
	return c.fn(args)
}

// Func returns the wrapped function directly. Calling it is equivalent
// to Invoke.
func (c Callback[T, R]) Func() func(T) R {
	return c.fn
}
