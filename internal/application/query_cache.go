package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"
	"creatorlink-shell/pkg/clock"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Default cache windows. The backend session is cookie based and long
// lived, so refetching more often only adds latency.
const (
	DefaultStaleAfter = 30 * time.Minute
	DefaultEvictAfter = 24 * time.Hour
)

// CacheListener is told about every result stored in the cache
type CacheListener func(key string, result domain.SessionResult)

// QueryCache struct - stale-while-revalidate cache of session query results.
// It is an explicit object handed to whatever needs session state; there is
// no package-level instance.
type QueryCache struct {
	store      output.SessionStore
	api        output.AuthAPI
	journal    output.EventJournal
	clock      clock.Clock
	staleAfter time.Duration
	evictAfter time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	listeners []CacheListener
}

// CacheOption configures a QueryCache
type CacheOption func(*QueryCache)

// WithCacheClock overrides the wall clock
func WithCacheClock(c clock.Clock) CacheOption {
	return func(q *QueryCache) { q.clock = c }
}

// WithCacheJournal records fetch outcomes into the diagnostics journal
func WithCacheJournal(j output.EventJournal) CacheOption {
	return func(q *QueryCache) { q.journal = j }
}

// NewQueryCache func - Creates a query cache; staleAfter must not exceed evictAfter
func NewQueryCache(store output.SessionStore, api output.AuthAPI, staleAfter, evictAfter time.Duration, opts ...CacheOption) (*QueryCache, error) {
	if err := domain.ValidateCacheWindow(staleAfter, evictAfter); err != nil {
		return nil, err
	}
	c := &QueryCache{
		store:      store,
		api:        api,
		clock:      clock.Real(),
		staleAfter: staleAfter,
		evictAfter: evictAfter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe registers a listener for stored results
func (c *QueryCache) Subscribe(l CacheListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Get returns the session result for key.
//
// A fresh entry is returned without a network call. A stale entry is
// returned immediately and refreshed in the background. A missing or
// evicted entry blocks until the fetch completes. Hard failures are
// returned and never cached.
func (c *QueryCache) Get(ctx context.Context, key string) (domain.SessionResult, error) {
	if entry, ok := c.store.Load(key); ok {
		switch entry.Freshness(c.clock.Now()) {
		case domain.Fresh:
			return entry.Result, nil
		case domain.Stale:
			c.refreshInBackground(key)
			return entry.Result, nil
		}
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// shared by every waiter, so one caller leaving must not cancel it
		return c.load(context.WithoutCancel(ctx), key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Unknown(), res.Err
		}
		return res.Val.(domain.SessionResult), nil
	case <-ctx.Done():
		return domain.Unknown(), ctx.Err()
	}
}

// Peek returns the stored entry without any fetch
func (c *QueryCache) Peek(key string) (domain.CacheEntry, bool) {
	return c.store.Load(key)
}

// Invalidate drops the entry so the next Get fetches again
func (c *QueryCache) Invalidate(key string) {
	c.store.Delete(key)
	c.group.Forget(key)
	c.record(domain.EventInvalidate, key, 0)
}

// Set overwrites the entry for key with result, fetched now
func (c *QueryCache) Set(key string, result domain.SessionResult) {
	entry := domain.CacheEntry{
		Result:     result,
		FetchedAt:  c.clock.Now(),
		StaleAfter: c.staleAfter,
		EvictAfter: c.evictAfter,
	}
	c.store.Overwrite(key, entry)
	c.group.Forget(key)
	c.notify(key, result)
}

func (c *QueryCache) refreshInBackground(key string) {
	go func() {
		_, err, shared := c.group.Do(key, func() (interface{}, error) {
			// a refresh that finished before this goroutine ran already did the work
			if entry, ok := c.store.Load(key); ok && entry.Freshness(c.clock.Now()) == domain.Fresh {
				return entry.Result, nil
			}
			return c.load(context.Background(), key)
		})
		if err != nil && !shared {
			logrus.Warnf("Background session refresh failed, keeping stale entry: %v", err)
		}
	}()
}

// load issues one fetch and commits its result if no logout, overwrite or
// invalidation happened while it was in flight.
func (c *QueryCache) load(ctx context.Context, key string) (domain.SessionResult, error) {
	gen := c.store.Generation()

	identity, err := c.api.FetchUser(ctx)
	result, err := c.classify(identity, err)
	if err != nil {
		return domain.Unknown(), err
	}

	entry := domain.CacheEntry{
		Result:     result,
		FetchedAt:  c.clock.Now(),
		StaleAfter: c.staleAfter,
		EvictAfter: c.evictAfter,
	}
	if !c.store.CommitIfCurrent(key, entry, gen) {
		c.record(domain.EventFetchSuperseded, "result arrived after the entry changed", 0)
		logrus.Info("Session fetch superseded, keeping the newer entry")
		if current, ok := c.store.Load(key); ok {
			return current.Result, nil
		}
		return result, nil
	}

	c.notify(key, result)
	return result, nil
}

// classify maps a fetch outcome onto a cacheable result.
// Timeouts fail open to unauthenticated; hard failures are returned.
func (c *QueryCache) classify(identity domain.Identity, err error) (domain.SessionResult, error) {
	switch {
	case err == nil && identity.Present():
		c.record(domain.EventFetchAuthenticated, "", 200)
		return domain.Authenticated(identity), nil
	case err == nil:
		c.record(domain.EventFetchUnauthenticated, "empty identity", 200)
		return domain.Unauthenticated(), nil
	case errors.Is(err, domain.ErrUnauthorized):
		c.record(domain.EventFetchUnauthenticated, "", domain.StatusCodeOf(err))
		return domain.Unauthenticated(), nil
	case errors.Is(err, domain.ErrTransportTimeout):
		c.record(domain.EventFetchTimeout, err.Error(), 0)
		return domain.Unauthenticated(), nil
	default:
		c.record(domain.EventFetchFailed, err.Error(), domain.StatusCodeOf(err))
		return domain.Unknown(), err
	}
}

func (c *QueryCache) notify(key string, result domain.SessionResult) {
	c.mu.RLock()
	listeners := make([]CacheListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(key, result)
	}
}

func (c *QueryCache) record(kind domain.EventKind, detail string, status int) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(domain.NewSessionEvent(kind, detail, status, c.clock.Now())); err != nil {
		logrus.Warnf("Failed to record session event %s: %v", kind, err)
	}
}
