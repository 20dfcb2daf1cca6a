package eventkit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// Test helpers used across tests

// capture collects payloads delivered to a listener, safe for
// concurrent fires.
type capture[T any] struct {
	mu     sync.Mutex
	values []T
}

// listener returns a Listener that records each payload.
func (c *capture[T]) listener() Listener[T] {
	return func(v T) {
		c.mu.Lock()
		c.values = append(c.values, v)
		c.mu.Unlock()
	}
}

// all returns a copy of the recorded payloads.
func (c *capture[T]) all() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

// count returns the number of recorded payloads.
func (c *capture[T]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// makePanicListener returns a listener that panics with the given value.
func makePanicListener[T any](value any) Listener[T] {
	return func(T) {
		panic(value)
	}
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// testLogHandler captures log records for testing.
type testLogHandler struct {
	buf   *bytes.Buffer
	level slog.Level
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	enc := json.NewEncoder(h.buf)
	return enc.Encode(data)
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *testLogHandler) getRecords() []map[string]any {
	var records []map[string]any
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			var m map[string]any
			if err := json.Unmarshal(line, &m); err == nil {
				records = append(records, m)
			}
		}
	}
	return records
}
