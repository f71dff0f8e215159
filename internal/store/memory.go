// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used for ephemeral game sessions,
// primarily in development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores byte values keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied on the way in and out; callers may reuse buffers.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// Store is the get/set byte-store that game snapshots are persisted in.
// Writes are last-writer-wins per key.
type Store interface {
	// Get returns the value for key, or an apperr.KindNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores val under key, replacing any previous value.
	Set(ctx context.Context, key string, val []byte) error

	// SetIfAbsent stores val under key only when key is not present, as one
	// atomic step. It reports whether val was written.
	SetIfAbsent(ctx context.Context, key string, val []byte) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu   sync.RWMutex      // guards vals
	vals map[string][]byte // keyed by caller key
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{vals: make(map[string][]byte)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vals[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, apperr.New("store.get", apperr.KindNotFound, key)
}

func (m *memory) Set(ctx context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = append([]byte(nil), val...)
	return nil
}

func (m *memory) SetIfAbsent(ctx context.Context, key string, val []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = append([]byte(nil), val...)
	return true, nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}

func (m *memory) Close() error { return nil }
