package application

import (
	"sync"
	"time"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/input"
	"creatorlink-shell/pkg/clock"

	"github.com/sirupsen/logrus"
)

var _ input.RouteGate = (*RouteGate)(nil)

// DefaultPresentationTimeout is how long the spinner may show before the
// public screens are rendered anyway.
const DefaultPresentationTimeout = 8 * time.Second

// Decide selects exactly one screen set. The authenticated set is only
// chosen when the resolved phase is authenticated; a pending state shows
// the spinner until the presentation timer has elapsed.
func Decide(state domain.ResolutionState, presentationElapsed bool) domain.View {
	switch state.Phase() {
	case domain.PhaseAuthenticated:
		return domain.ViewAuthenticated
	case domain.PhaseUnauthenticated:
		return domain.ViewPublic
	default:
		if presentationElapsed {
			return domain.ViewPublic
		}
		return domain.ViewLoading
	}
}

// RouteGate struct - owns the presentation timer and the current view.
// The timer only changes what is rendered, never the resolution state.
type RouteGate struct {
	clock   clock.Clock
	timeout time.Duration

	mu      sync.RWMutex
	state   domain.ResolutionState
	timer   clock.Timer
	elapsed bool
	round   uint64
}

// NewRouteGate func
func NewRouteGate(c clock.Clock, timeout time.Duration) *RouteGate {
	if c == nil {
		c = clock.Real()
	}
	if timeout <= 0 {
		timeout = DefaultPresentationTimeout
	}
	return &RouteGate{
		clock:   c,
		timeout: timeout,
		state:   domain.PendingState(),
	}
}

// Observe feeds a new resolution state into the gate. It is meant to be
// registered as a resolver listener.
func (g *RouteGate) Observe(state domain.ResolutionState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = state
	if state.Phase() != domain.PhasePending {
		g.stopLocked()
		g.elapsed = false
		return
	}
	if g.timer != nil || g.elapsed {
		return
	}
	g.round++
	round := g.round
	g.timer = g.clock.AfterFunc(g.timeout, func() { g.onElapsed(round) })
}

// View returns the screen set to render now
func (g *RouteGate) View() domain.View {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Decide(g.state, g.elapsed)
}

// Allows reports whether a screen of the given set may be rendered now
func (g *RouteGate) Allows(set domain.View) bool {
	return g.View() == set
}

func (g *RouteGate) onElapsed(round uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if round != g.round || g.timer == nil {
		return
	}
	g.timer = nil
	g.elapsed = true
	logrus.Infof("Session still loading after %v, showing public screens", g.timeout)
}

func (g *RouteGate) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.round++
}
