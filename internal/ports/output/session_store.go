package output

import "creatorlink-shell/internal/domain"

// SessionStore interface - Output port
// Holds the session query cache entries. Every mutation advances a single
// monotonically increasing generation; a fetch result is only committed
// when the generation it was issued under is still current. Implementations
// must be safe for concurrent access.
type SessionStore interface {
	// Load returns the entry for key, if any
	Load(key string) (domain.CacheEntry, bool)

	// Generation returns the current generation
	Generation() uint64

	// CommitIfCurrent stores entry only if gen is still the current
	// generation, advancing it. It reports whether the entry was stored.
	CommitIfCurrent(key string, entry domain.CacheEntry, gen uint64) bool

	// Overwrite stores entry unconditionally, advancing the generation
	Overwrite(key string, entry domain.CacheEntry)

	// Delete drops the entry, advancing the generation. Idempotent.
	Delete(key string)
}
