package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"creatorlink-shell/internal/adapters/output/memory"
	"creatorlink-shell/internal/domain"
	"creatorlink-shell/pkg/clock"

	"github.com/stretchr/testify/require"
)

// Default session configuration values for tests
const (
	testStaleAfter          = 30 * time.Minute
	testEvictAfter          = 24 * time.Hour
	testPendingTimeout      = 5 * time.Second
	testPresentationTimeout = 8 * time.Second
)

var amy = domain.NewIdentity([]byte(`{"id":"u1","firstName":"Amy"}`))

// MockAuthAPI implements output.AuthAPI for testing
type MockAuthAPI struct {
	FetchUserFunc func(ctx context.Context) (domain.Identity, error)
	LogoutFunc    func(ctx context.Context) error

	fetchCalls  atomic.Int32
	logoutCalls atomic.Int32
}

func (m *MockAuthAPI) FetchUser(ctx context.Context) (domain.Identity, error) {
	m.fetchCalls.Add(1)
	if m.FetchUserFunc != nil {
		return m.FetchUserFunc(ctx)
	}
	return amy, nil
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	m.logoutCalls.Add(1)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthAPI) FetchCalls() int {
	return int(m.fetchCalls.Load())
}

func (m *MockAuthAPI) LogoutCalls() int {
	return int(m.logoutCalls.Load())
}

// gatedFetch blocks every FetchUser call until release is called with the
// answer; started reports each call as it begins.
type gatedFetch struct {
	started chan struct{}
	answer  chan fetchAnswer
}

type fetchAnswer struct {
	identity domain.Identity
	err      error
}

func newGatedFetch() *gatedFetch {
	return &gatedFetch{
		started: make(chan struct{}, 16),
		answer:  make(chan fetchAnswer, 16),
	}
}

func (g *gatedFetch) fetch(ctx context.Context) (domain.Identity, error) {
	g.started <- struct{}{}
	a := <-g.answer
	return a.identity, a.err
}

func (g *gatedFetch) release(identity domain.Identity, err error) {
	g.answer <- fetchAnswer{identity: identity, err: err}
}

func (g *gatedFetch) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not issued")
	}
}

type fixture struct {
	api      *MockAuthAPI
	store    *memory.MemorySessionStore
	journal  *memory.EventJournal
	clock    *clock.Fake
	cache    *QueryCache
	resolver *SessionResolver
	gate     *RouteGate
}

func newFixture(t *testing.T, api *MockAuthAPI) *fixture {
	t.Helper()
	f := &fixture{
		api:     api,
		store:   memory.NewMemorySessionStore(),
		journal: memory.NewEventJournal(0),
		clock:   clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	cache, err := NewQueryCache(f.store, api, testStaleAfter, testEvictAfter,
		WithCacheClock(f.clock), WithCacheJournal(f.journal))
	require.NoError(t, err)
	f.cache = cache
	f.resolver = NewSessionResolver(cache, api,
		WithResolverClock(f.clock),
		WithResolverJournal(f.journal),
		WithPendingTimeout(testPendingTimeout))
	f.gate = NewRouteGate(f.clock, testPresentationTimeout)
	f.resolver.Subscribe(f.gate.Observe)
	return f
}

func (f *fixture) waitPhase(t *testing.T, want domain.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.resolver.State().Phase() == want
	}, 2*time.Second, 5*time.Millisecond, "phase never became %s", want)
}

func (f *fixture) countEvents(t *testing.T, kind domain.EventKind) int {
	t.Helper()
	result, err := f.journal.List(domain.QueryEventRequest{Kind: &kind})
	require.NoError(t, err)
	return int(*result.TotalItem)
}

func (f *fixture) waitView(t *testing.T, want domain.View) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.gate.View() == want
	}, 2*time.Second, 5*time.Millisecond, "view never became %s", want)
}
