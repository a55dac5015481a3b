package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"creatorlink-shell/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hardFailure(ctx context.Context) (domain.Identity, error) {
	return domain.Identity{}, fmt.Errorf("%w: status 500", domain.ErrHardFailure)
}

// TestResolveAuthenticated tests that a present identity resolves to the signed-in experience
func TestResolveAuthenticated(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{})

	require.Equal(t, domain.PhasePending, f.resolver.State().Phase())
	require.Equal(t, domain.ViewLoading, f.gate.View())

	f.resolver.Resolve(context.Background())
	f.waitPhase(t, domain.PhaseAuthenticated)

	state := f.resolver.State()
	assert.False(t, state.IsPending)
	assert.False(t, state.HasTimedOut)

	var user struct {
		FirstName string `json:"firstName"`
	}
	require.NoError(t, state.Outcome.Identity.Decode(&user))
	assert.Equal(t, "Amy", user.FirstName)

	f.waitView(t, domain.ViewAuthenticated)
	// both the pending timer and the presentation timer were stopped
	assert.Equal(t, 0, f.clock.Pending())
}

// TestResolveUnauthorized tests that a 401 resolves to the public experience
func TestResolveUnauthorized(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{FetchUserFunc: func(ctx context.Context) (domain.Identity, error) {
		return domain.Identity{}, domain.ErrUnauthorized
	}})

	f.resolver.Resolve(context.Background())
	f.waitPhase(t, domain.PhaseUnauthenticated)

	state := f.resolver.State()
	assert.False(t, state.IsPending)
	assert.Equal(t, domain.SessionUnauthenticated, state.Outcome.Status)
	f.waitView(t, domain.ViewPublic)
}

// TestResolveFailsOpenAfterPendingTimeout tests that a hanging backend yields the public experience
func TestResolveFailsOpenAfterPendingTimeout(t *testing.T) {
	gate := newGatedFetch()
	f := newFixture(t, &MockAuthAPI{FetchUserFunc: gate.fetch})
	t.Cleanup(func() { gate.release(domain.Identity{}, domain.ErrHardFailure) })

	f.resolver.Resolve(context.Background())
	gate.waitStarted(t)

	f.clock.Advance(testPendingTimeout - time.Millisecond)
	require.Equal(t, domain.PhasePending, f.resolver.State().Phase())
	require.Equal(t, domain.ViewLoading, f.gate.View())

	f.clock.Advance(time.Millisecond)
	state := f.resolver.State()
	assert.True(t, state.IsPending)
	assert.True(t, state.HasTimedOut)
	assert.Equal(t, domain.SessionUnknown, state.Outcome.Status)
	assert.Equal(t, domain.PhaseUnauthenticated, state.Phase())
	assert.Equal(t, domain.ViewPublic, f.gate.View())
	assert.Equal(t, 1, f.countEvents(t, domain.EventPendingTimeout))
}

// TestResolveHardFailureStaysPendingUntilTimeout tests that a non-timeout failure never resolves by itself
func TestResolveHardFailureStaysPendingUntilTimeout(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{FetchUserFunc: hardFailure})

	f.resolver.Resolve(context.Background())
	require.Eventually(t, func() bool {
		return f.resolver.LastError() != nil
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, errors.Is(f.resolver.LastError(), domain.ErrHardFailure))
	assert.Equal(t, domain.PhasePending, f.resolver.State().Phase())
	assert.Equal(t, domain.ViewLoading, f.gate.View())

	f.clock.Advance(testPendingTimeout)
	state := f.resolver.State()
	assert.True(t, state.IsPending)
	assert.True(t, state.HasTimedOut)
	assert.Equal(t, domain.ViewPublic, f.gate.View())

	// the presentation timer firing later changes nothing
	f.clock.Advance(testPresentationTimeout)
	assert.Equal(t, domain.ViewPublic, f.gate.View())
}

// TestLateSuccessAfterTimeoutAuthenticates tests that a slow but successful fetch still signs the user in
func TestLateSuccessAfterTimeoutAuthenticates(t *testing.T) {
	gate := newGatedFetch()
	f := newFixture(t, &MockAuthAPI{FetchUserFunc: gate.fetch})

	f.resolver.Resolve(context.Background())
	gate.waitStarted(t)
	f.clock.Advance(testPendingTimeout)
	require.Equal(t, domain.PhaseUnauthenticated, f.resolver.State().Phase())

	gate.release(amy, nil)
	f.waitPhase(t, domain.PhaseAuthenticated)

	state := f.resolver.State()
	assert.False(t, state.IsPending)
	assert.False(t, state.HasTimedOut)
	f.waitView(t, domain.ViewAuthenticated)
}

// TestLogoutWinsOverInFlightFetch tests that a fetch completing after logout cannot restore the session
func TestLogoutWinsOverInFlightFetch(t *testing.T) {
	gate := newGatedFetch()
	f := newFixture(t, &MockAuthAPI{FetchUserFunc: gate.fetch})

	f.resolver.Resolve(context.Background())
	gate.waitStarted(t)

	require.NoError(t, f.resolver.Logout(context.Background()))
	require.Equal(t, domain.PhaseUnauthenticated, f.resolver.State().Phase())
	require.False(t, f.resolver.State().IsPending)

	gate.release(amy, nil)
	require.Eventually(t, func() bool {
		return f.countEvents(t, domain.EventFetchSuperseded) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// let the dropped completion run to its end
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.PhaseUnauthenticated, f.resolver.State().Phase())
	entry, ok := f.cache.Peek(domain.SessionKey)
	require.True(t, ok)
	assert.Equal(t, domain.SessionUnauthenticated, entry.Result.Status)
	assert.Equal(t, domain.ViewPublic, f.gate.View())

	// the superseded attempt's pending timer was stopped too
	f.clock.Advance(testPendingTimeout)
	assert.Equal(t, 0, f.countEvents(t, domain.EventPendingTimeout))
}

// TestLogoutThenGetIssuesNoCall tests that reads after logout are served from the cache
func TestLogoutThenGetIssuesNoCall(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{})
	ctx := context.Background()

	f.resolver.Resolve(ctx)
	f.waitPhase(t, domain.PhaseAuthenticated)
	require.Equal(t, 1, f.api.FetchCalls())

	require.NoError(t, f.resolver.Logout(ctx))
	assert.Equal(t, 1, f.api.LogoutCalls())

	result, err := f.cache.Get(ctx, domain.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionUnauthenticated, result.Status)

	f.resolver.Resolve(ctx)
	f.waitPhase(t, domain.PhaseUnauthenticated)
	assert.Equal(t, 1, f.api.FetchCalls())
	assert.Equal(t, 1, f.countEvents(t, domain.EventLogout))
}

// TestLogoutFailureKeepsSession tests that a rejected logout leaves the state unchanged
func TestLogoutFailureKeepsSession(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{LogoutFunc: func(ctx context.Context) error {
		return fmt.Errorf("%w: status 500", domain.ErrLogoutFailed)
	}})
	ctx := context.Background()

	f.resolver.Resolve(ctx)
	f.waitPhase(t, domain.PhaseAuthenticated)

	err := f.resolver.Logout(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLogoutFailed))
	assert.Equal(t, domain.PhaseAuthenticated, f.resolver.State().Phase())
	assert.Equal(t, 1, f.countEvents(t, domain.EventLogoutFailed))
	assert.Equal(t, 0, f.countEvents(t, domain.EventLogout))
}

// TestLogoutWrapsTransportErrors tests that any logout error is reported as a logout failure
func TestLogoutWrapsTransportErrors(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{LogoutFunc: func(ctx context.Context) error {
		return errors.New("connection refused")
	}})

	err := f.resolver.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLogoutFailed))
}

// TestLogoutIsIdempotent tests that logging out twice stays unauthenticated
func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{})
	ctx := context.Background()

	require.NoError(t, f.resolver.Logout(ctx))
	require.NoError(t, f.resolver.Logout(ctx))
	assert.Equal(t, domain.PhaseUnauthenticated, f.resolver.State().Phase())
	assert.Equal(t, 2, f.api.LogoutCalls())
	assert.Equal(t, 0, f.api.FetchCalls())
}

// TestRefreshRefetches tests that Refresh bypasses a fresh entry
func TestRefreshRefetches(t *testing.T) {
	api := &MockAuthAPI{}
	f := newFixture(t, api)
	ctx := context.Background()

	f.resolver.Resolve(ctx)
	f.waitPhase(t, domain.PhaseAuthenticated)

	api.FetchUserFunc = func(ctx context.Context) (domain.Identity, error) {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	f.resolver.Refresh(ctx)
	f.waitPhase(t, domain.PhaseUnauthenticated)
	assert.Equal(t, 2, api.FetchCalls())
	assert.Equal(t, 1, f.countEvents(t, domain.EventInvalidate))
}

// TestBackgroundRefreshUpdatesState tests that a stale revalidation is reflected in the resolved state
func TestBackgroundRefreshUpdatesState(t *testing.T) {
	api := &MockAuthAPI{}
	f := newFixture(t, api)
	ctx := context.Background()

	f.resolver.Resolve(ctx)
	f.waitPhase(t, domain.PhaseAuthenticated)

	api.FetchUserFunc = func(ctx context.Context) (domain.Identity, error) {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	f.clock.Advance(testStaleAfter + time.Second)

	result, err := f.cache.Get(ctx, domain.SessionKey)
	require.NoError(t, err)
	assert.True(t, result.IsAuthenticated())

	f.waitPhase(t, domain.PhaseUnauthenticated)
	f.waitView(t, domain.ViewPublic)
}

// TestSubscribeSeesOrderedStates tests that listeners get the current state first and then every change
func TestSubscribeSeesOrderedStates(t *testing.T) {
	f := newFixture(t, &MockAuthAPI{})

	var (
		mu     sync.Mutex
		phases []domain.Phase
	)
	f.resolver.Subscribe(func(s domain.ResolutionState) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase())
	})

	f.resolver.Resolve(context.Background())
	f.waitPhase(t, domain.PhaseAuthenticated)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(phases) > 0 && phases[len(phases)-1] == domain.PhaseAuthenticated
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.Phase{domain.PhasePending, domain.PhasePending, domain.PhaseAuthenticated}, phases)
}
