package memory

import (
	"sync"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session cache entries.
// A single mutex guards both the entries and the generation so a commit is
// an atomic compare-and-set against the generation it was issued under.
type MemorySessionStore struct {
	mu         sync.Mutex
	entries    map[string]domain.CacheEntry
	generation uint64
}

// NewMemorySessionStore creates a new empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Load returns the entry stored under key
func (m *MemorySessionStore) Load(key string) (domain.CacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	return entry, ok
}

// Generation returns the current generation
func (m *MemorySessionStore) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// CommitIfCurrent stores entry when gen is still current.
// A stale generation means a logout, overwrite or invalidation happened
// after the fetch was issued; the late result is dropped.
func (m *MemorySessionStore) CommitIfCurrent(key string, entry domain.CacheEntry, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	m.entries[key] = entry
	m.generation++
	return true
}

// Overwrite stores entry unconditionally
func (m *MemorySessionStore) Overwrite(key string, entry domain.CacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	m.generation++
}

// Delete removes the entry for key.
// This operation is idempotent but still advances the generation so any
// fetch in flight cannot repopulate the dropped entry.
func (m *MemorySessionStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.generation++
}
