// Package journal provides a persistent audit trail of event fires.
//
// A Recorder observes an event through an ordinary connection and
// appends one entry per successful fire. The journal is strictly
// observational: entries are never replayed to subscribers, and a
// listener that missed a fire stays missed.
package journal

import (
	"errors"
	"time"
)

// Entry is one recorded fire.
type Entry struct {
	// ID is the unique entry identifier.
	ID string
	// Event is the name of the event that fired.
	Event string
	// Payload is the JSON-encoded fire payload.
	Payload []byte
	// FiredAt is when the fire was recorded, in UTC.
	FiredAt time.Time
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores one entry.
	Append(entry Entry) error

	// Recent returns up to limit entries, most recent first.
	// A non-positive limit returns all entries.
	Recent(limit int) ([]Entry, error)

	// ByEvent returns up to limit entries for one event name, most
	// recent first. A non-positive limit returns all matching entries.
	// Returns empty slice (not error) if the event has no entries.
	ByEvent(event string, limit int) ([]Entry, error)

	// Count returns the total number of entries.
	Count() (int, error)

	// Prune removes entries recorded before cutoff and returns how many
	// were removed.
	Prune(cutoff time.Time) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
