// Package hub provides a name-keyed registry of events sharing one
// payload type.
//
// A Hub materializes events on first use, applies shared options and
// optional settings from the config package, and hands back the same
// instance for the same name until it is removed.
package hub

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/randalmurphal/eventkit/pkg/eventkit"
	"github.com/randalmurphal/eventkit/pkg/eventkit/config"
)

// Hub manages named events with payload type T.
// It is safe for concurrent use.
type Hub[T any] struct {
	mu     sync.RWMutex
	events map[string]*eventkit.Event[T]

	opts     []eventkit.Option
	settings config.Settings
	logger   *slog.Logger
}

// New creates a hub. The given options are applied to every event the
// hub creates, before the per-event name and settings.
func New[T any](opts ...eventkit.Option) *Hub[T] {
	return &Hub[T]{
		events: make(map[string]*eventkit.Event[T]),
		opts:   opts,
		logger: slog.Default(),
	}
}

// WithLogger sets the hub's logger. Returns the hub for chaining.
func (h *Hub[T]) WithLogger(logger *slog.Logger) *Hub[T] {
	h.logger = logger
	return h
}

// WithSettings sets the settings document applied to events the hub
// creates. Returns the hub for chaining. Events already created are not
// revisited.
func (h *Hub[T]) WithSettings(settings config.Settings) *Hub[T] {
	h.settings = settings
	return h
}

// Get retrieves an event by name without creating it.
func (h *Hub[T]) Get(name string) (*eventkit.Event[T], bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	evt, ok := h.events[name]
	return evt, ok
}

// GetOrCreate retrieves the named event, creating it on first use.
// Concurrent callers for the same name receive the same instance.
func (h *Hub[T]) GetOrCreate(name string) *eventkit.Event[T] {
	h.mu.RLock()
	evt, ok := h.events[name]
	h.mu.RUnlock()

	if ok {
		return evt
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Double-check after acquiring write lock
	if evt, ok := h.events[name]; ok {
		return evt
	}

	evt = h.create(name)
	h.events[name] = evt
	return evt
}

// create builds a new event with the hub's options and settings applied.
// Caller must hold the write lock.
func (h *Hub[T]) create(name string) *eventkit.Event[T] {
	opts := append(append([]eventkit.Option{}, h.opts...), eventkit.WithName(name))
	evt := eventkit.New[T](opts...)

	es := h.settings.For(name)
	if throttle := es.Throttle.Std(); throttle > 0 {
		// Interval is positive, so SetThrottle cannot reject it.
		_ = evt.SetThrottle(throttle)
	}
	if es.Enabled != nil {
		evt.Enable(*es.Enabled)
	}

	h.logger.Debug("event created",
		slog.String("event", name),
		slog.Bool("enabled", evt.Enabled()),
	)
	return evt
}

// Names returns the names of all events in the hub, sorted.
func (h *Hub[T]) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.events))
	for name := range h.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of events in the hub.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Remove disconnects all of the named event's listeners and drops it
// from the hub. Returns false if the name is unknown. Pending waiters on
// the removed event are unaffected and still release on its next fire.
func (h *Hub[T]) Remove(name string) bool {
	h.mu.Lock()
	evt, ok := h.events[name]
	delete(h.events, name)
	h.mu.Unlock()

	if !ok {
		return false
	}

	evt.DisconnectAll()
	h.logger.Debug("event removed", slog.String("event", name))
	return true
}

// DisconnectAll disconnects every listener of every event in the hub.
// The events themselves stay registered.
func (h *Hub[T]) DisconnectAll() {
	h.mu.RLock()
	events := make([]*eventkit.Event[T], 0, len(h.events))
	for _, evt := range h.events {
		events = append(events, evt)
	}
	h.mu.RUnlock()

	for _, evt := range events {
		evt.DisconnectAll()
	}
}
