package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SessionKey identifies the current user's session in the query cache.
// There is exactly one session per client context.
const SessionKey = "auth/user"

// SessionStatus is the resolved state of a session fetch
type SessionStatus int

const (
	// SessionUnknown means the fetch has not resolved yet
	SessionUnknown SessionStatus = iota
	// SessionAuthenticated means the backend returned an identity
	SessionAuthenticated
	// SessionUnauthenticated means the backend answered with no identity
	SessionUnauthenticated
)

// String returns the lower-case name used in JSON and logs
func (s SessionStatus) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// MarshalJSON func
func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Identity is the opaque user record returned by the backend.
// The session core only cares whether it is present; consumers may Decode it.
type Identity struct {
	raw json.RawMessage
}

// NewIdentity wraps a raw JSON document. A nil, empty or `null` body yields
// an identity that is not Present.
func NewIdentity(raw []byte) Identity {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Identity{}
	}
	cp := make([]byte, len(trimmed))
	copy(cp, trimmed)
	return Identity{raw: cp}
}

// Present reports whether the backend supplied an identity
func (i Identity) Present() bool {
	return len(i.raw) > 0
}

// Decode unmarshals the identity into v
func (i Identity) Decode(v any) error {
	if !i.Present() {
		return fmt.Errorf("decode identity: %w", ErrNoIdentity)
	}
	return json.Unmarshal(i.raw, v)
}

// MarshalJSON re-emits the backend document unchanged
func (i Identity) MarshalJSON() ([]byte, error) {
	if !i.Present() {
		return []byte("null"), nil
	}
	return i.raw, nil
}

// SessionResult is one of Authenticated(identity), Unauthenticated or Unknown
type SessionResult struct {
	Status   SessionStatus `json:"status"`
	Identity Identity      `json:"identity"`
}

// Authenticated builds a result carrying the given identity
func Authenticated(identity Identity) SessionResult {
	return SessionResult{Status: SessionAuthenticated, Identity: identity}
}

// Unauthenticated builds the logged-out result
func Unauthenticated() SessionResult {
	return SessionResult{Status: SessionUnauthenticated}
}

// Unknown builds the not-yet-resolved result
func Unknown() SessionResult {
	return SessionResult{Status: SessionUnknown}
}

// IsAuthenticated func
func (r SessionResult) IsAuthenticated() bool {
	return r.Status == SessionAuthenticated && r.Identity.Present()
}

// Freshness classifies a cache entry by its age
type Freshness int

const (
	// Fresh entries are served without a network call
	Fresh Freshness = iota
	// Stale entries are served while a background refresh runs
	Stale
	// Evicted entries force a blocking fetch
	Evicted
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "evicted"
	}
}

// CacheEntry wraps a SessionResult with the time windows that govern reuse.
// Invariant: StaleAfter <= EvictAfter.
type CacheEntry struct {
	Result     SessionResult
	FetchedAt  time.Time
	StaleAfter time.Duration
	EvictAfter time.Duration
}

// NewCacheEntry creates an entry fetched at the given time
func NewCacheEntry(result SessionResult, fetchedAt time.Time, staleAfter, evictAfter time.Duration) (CacheEntry, error) {
	if err := ValidateCacheWindow(staleAfter, evictAfter); err != nil {
		return CacheEntry{}, err
	}
	return CacheEntry{
		Result:     result,
		FetchedAt:  fetchedAt,
		StaleAfter: staleAfter,
		EvictAfter: evictAfter,
	}, nil
}

// ValidateCacheWindow checks 0 <= staleAfter <= evictAfter
func ValidateCacheWindow(staleAfter, evictAfter time.Duration) error {
	if staleAfter < 0 || evictAfter <= 0 || staleAfter > evictAfter {
		return fmt.Errorf("%w: stale after %v, evict after %v", ErrInvalidCacheWindow, staleAfter, evictAfter)
	}
	return nil
}

// Freshness returns how the entry may be served at now
func (e CacheEntry) Freshness(now time.Time) Freshness {
	age := now.Sub(e.FetchedAt)
	switch {
	case age < e.StaleAfter:
		return Fresh
	case age < e.EvictAfter:
		return Stale
	default:
		return Evicted
	}
}
