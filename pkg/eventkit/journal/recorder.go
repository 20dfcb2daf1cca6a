package journal

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventkit/pkg/eventkit"
)

// Recorder appends one journal entry per successful fire of an event.
// It observes fires through an ordinary connection, so attaching and
// detaching follow the usual connection lifecycle.
//
// Append failures are logged and dropped: a broken journal must never
// break dispatch.
type Recorder[T any] struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to store.
// Uses slog.Default() for logging; override with WithLogger.
func NewRecorder[T any](store Store) *Recorder[T] {
	return &Recorder[T]{
		store:  store,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for append failures.
// Returns the recorder for chaining.
func (r *Recorder[T]) WithLogger(logger *slog.Logger) *Recorder[T] {
	r.logger = logger
	return r
}

// Attach connects the recorder to evt. The returned connection is the
// detach handle; disconnecting it stops recording without touching the
// store.
func (r *Recorder[T]) Attach(evt *eventkit.Event[T]) *eventkit.Connection[T] {
	name := evt.Name()
	return evt.Connect(func(args T) {
		r.record(name, args)
	})
}

// record encodes and appends one fire.
func (r *Recorder[T]) record(event string, args T) {
	payload, err := json.Marshal(args)
	if err != nil {
		r.logger.Error("journal encode failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
		return
	}

	entry := Entry{
		ID:      uuid.New().String(),
		Event:   event,
		Payload: payload,
		FiredAt: time.Now().UTC(),
	}

	if err := r.store.Append(entry); err != nil {
		r.logger.Error("journal append failed",
			slog.String("event", event),
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Debug("fire journaled",
		slog.String("event", event),
		slog.String("entry_id", entry.ID),
	)
}
