package journal

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory journal store for testing.
// Entries are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy payload to avoid retaining caller's slice
	payload := make([]byte, len(entry.Payload))
	copy(payload, entry.Payload)
	entry.Payload = payload

	m.entries = append(m.entries, entry)
	return nil
}

// Recent implements Store.
func (m *MemoryStore) Recent(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	return m.collect(limit, func(Entry) bool { return true }), nil
}

// ByEvent implements Store.
func (m *MemoryStore) ByEvent(event string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	return m.collect(limit, func(e Entry) bool { return e.Event == event }), nil
}

// collect walks entries newest-first, copying matches until limit is
// reached. Caller must hold the lock.
func (m *MemoryStore) collect(limit int, match func(Entry) bool) []Entry {
	result := make([]Entry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		if !match(m.entries[i]) {
			continue
		}
		result = append(result, copyEntry(m.entries[i]))
	}
	return result
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.entries), nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	kept := m.entries[:0]
	for _, entry := range m.entries {
		if !entry.FiredAt.Before(cutoff) {
			kept = append(kept, entry)
		}
	}
	removed := len(m.entries) - len(kept)
	m.entries = kept
	return removed, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// copyEntry returns entry with its payload copied, so callers cannot
// mutate stored bytes.
func copyEntry(entry Entry) Entry {
	payload := make([]byte, len(entry.Payload))
	copy(payload, entry.Payload)
	entry.Payload = payload
	return entry
}
