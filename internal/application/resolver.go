package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/input"
	"creatorlink-shell/internal/ports/output"
	"creatorlink-shell/pkg/clock"

	"github.com/sirupsen/logrus"
)

var _ input.SessionService = (*SessionResolver)(nil)

// DefaultPendingTimeout is how long resolution may stay pending before it
// fails open to the public experience.
const DefaultPendingTimeout = 5 * time.Second

// StateListener is told about every published resolution state
type StateListener func(domain.ResolutionState)

// SessionResolver struct - the session resolution state machine.
//
// Each Resolve call starts a new attempt. Completions and timer callbacks
// carry the attempt they belong to and are dropped once a newer attempt or
// a logout has superseded them.
type SessionResolver struct {
	cache          *QueryCache
	api            output.AuthAPI
	journal        output.EventJournal
	clock          clock.Clock
	pendingTimeout time.Duration

	publishMu sync.Mutex

	mu        sync.Mutex
	state     domain.ResolutionState
	attempt   uint64
	timer     clock.Timer
	lastErr   error
	listeners []StateListener
}

// ResolverOption configures a SessionResolver
type ResolverOption func(*SessionResolver)

// WithResolverClock overrides the wall clock
func WithResolverClock(c clock.Clock) ResolverOption {
	return func(r *SessionResolver) { r.clock = c }
}

// WithResolverJournal records timeouts and logouts into the diagnostics journal
func WithResolverJournal(j output.EventJournal) ResolverOption {
	return func(r *SessionResolver) { r.journal = j }
}

// WithPendingTimeout overrides DefaultPendingTimeout
func WithPendingTimeout(d time.Duration) ResolverOption {
	return func(r *SessionResolver) {
		if d > 0 {
			r.pendingTimeout = d
		}
	}
}

// NewSessionResolver func - Creates the resolver in the Pending state.
// Nothing is fetched until Resolve is called.
func NewSessionResolver(cache *QueryCache, api output.AuthAPI, opts ...ResolverOption) *SessionResolver {
	r := &SessionResolver{
		cache:          cache,
		api:            api,
		clock:          clock.Real(),
		pendingTimeout: DefaultPendingTimeout,
		state:          domain.PendingState(),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache.Subscribe(r.onCacheChange)
	return r
}

// Subscribe registers a listener and immediately sends it the current state
func (r *SessionResolver) Subscribe(l StateListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	state := r.state
	r.mu.Unlock()
	l(state)
}

// State returns the current resolution state
func (r *SessionResolver) State() domain.ResolutionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastError returns the hard failure of the current attempt, if any
func (r *SessionResolver) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Resolve starts a new resolution attempt. The state becomes Pending, the
// fail-open timer is armed and the session query runs asynchronously.
func (r *SessionResolver) Resolve(ctx context.Context) {
	r.mu.Lock()
	r.attempt++
	attempt := r.attempt
	r.lastErr = nil
	r.stopTimerLocked()
	r.timer = r.clock.AfterFunc(r.pendingTimeout, func() { r.onPendingTimeout(attempt) })
	r.setLocked(domain.PendingState())
	r.mu.Unlock()
	r.publish()

	go r.run(ctx, attempt)
}

// Refresh drops the cached session and resolves again
func (r *SessionResolver) Refresh(ctx context.Context) {
	r.cache.Invalidate(domain.SessionKey)
	r.Resolve(ctx)
}

// Logout ends the backend session and pins the state to unauthenticated.
// Any resolution still in flight is superseded first, so a fetch that
// completes afterwards cannot bring the session back.
func (r *SessionResolver) Logout(ctx context.Context) error {
	if err := r.api.Logout(ctx); err != nil {
		logrus.Errorf("Logout failed: %v", err)
		r.record(domain.EventLogoutFailed, err.Error())
		if errors.Is(err, domain.ErrLogoutFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrLogoutFailed, err)
	}

	r.mu.Lock()
	r.attempt++
	r.stopTimerLocked()
	r.mu.Unlock()

	r.cache.Set(domain.SessionKey, domain.Unauthenticated())

	r.mu.Lock()
	r.lastErr = nil
	r.setLocked(domain.ResolvedState(domain.Unauthenticated()))
	r.mu.Unlock()
	r.publish()

	r.record(domain.EventLogout, "")
	logrus.Info("Session logged out")
	return nil
}

func (r *SessionResolver) run(ctx context.Context, attempt uint64) {
	result, err := r.cache.Get(ctx, domain.SessionKey)

	r.mu.Lock()
	if attempt != r.attempt {
		r.mu.Unlock()
		return
	}
	if err != nil {
		// stay pending; the fail-open timer decides
		r.lastErr = err
		timedOut := r.state.HasTimedOut
		r.mu.Unlock()
		logrus.Warnf("Session resolution failed (timed out: %v): %v", timedOut, err)
		return
	}
	r.applyLocked(result)
	r.mu.Unlock()
	r.publish()
}

// onCacheChange follows results stored by background refreshes and Set
func (r *SessionResolver) onCacheChange(key string, result domain.SessionResult) {
	if key != domain.SessionKey || result.Status == domain.SessionUnknown {
		return
	}
	r.mu.Lock()
	if r.state.IsPending && !r.state.HasTimedOut {
		// an attempt is running and run() applies its own result
		r.mu.Unlock()
		return
	}
	r.applyLocked(result)
	r.mu.Unlock()
	r.publish()
}

func (r *SessionResolver) onPendingTimeout(attempt uint64) {
	r.mu.Lock()
	if attempt != r.attempt || !r.state.IsPending || r.state.HasTimedOut {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	next := r.state
	next.HasTimedOut = true
	r.setLocked(next)
	r.mu.Unlock()

	logrus.Infof("Session still pending after %v, continuing unauthenticated", r.pendingTimeout)
	r.record(domain.EventPendingTimeout, fmt.Sprintf("pending for %v", r.pendingTimeout))
	r.publish()
}

func (r *SessionResolver) applyLocked(result domain.SessionResult) {
	r.stopTimerLocked()
	r.lastErr = nil
	r.setLocked(domain.ResolvedState(result))
}

// setLocked enforces that HasTimedOut never outlives IsPending
func (r *SessionResolver) setLocked(state domain.ResolutionState) {
	if !state.IsPending {
		state.HasTimedOut = false
	}
	r.state = state
}

func (r *SessionResolver) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// publish sends the latest state to every listener. Publications are
// serialized and always read the state at send time, so listeners never see
// an older state after a newer one. Listeners must not call back into the
// resolver's commands.
func (r *SessionResolver) publish() {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	r.mu.Lock()
	state := r.state
	listeners := make([]StateListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (r *SessionResolver) record(kind domain.EventKind, detail string) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(domain.NewSessionEvent(kind, detail, 0, r.clock.Now())); err != nil {
		logrus.Warnf("Failed to record session event %s: %v", kind, err)
	}
}
