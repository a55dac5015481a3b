package domain

import "encoding/json"

// Phase is the ternary signal the rest of the application consumes
type Phase int

const (
	// PhasePending means resolution has not finished
	PhasePending Phase = iota
	// PhaseAuthenticated means the user has a session
	PhaseAuthenticated
	// PhaseUnauthenticated means the user gets the public experience
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "pending"
	}
}

// MarshalJSON func
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// ResolutionState is what the resolver publishes.
//
// HasTimedOut is only ever true while IsPending is true; it marks a
// resolution that failed open after the pending timeout. Outcome stays
// Unknown in that case so "don't know" remains distinguishable from
// "logged out", while Phase reports the fail-open decision.
type ResolutionState struct {
	Outcome     SessionResult `json:"outcome"`
	IsPending   bool          `json:"is_pending"`
	HasTimedOut bool          `json:"has_timed_out"`
}

// PendingState is the initial state of every resolution attempt
func PendingState() ResolutionState {
	return ResolutionState{Outcome: Unknown(), IsPending: true}
}

// ResolvedState builds the state for a completed fetch
func ResolvedState(result SessionResult) ResolutionState {
	return ResolutionState{Outcome: result}
}

// Phase derives the ternary signal
func (s ResolutionState) Phase() Phase {
	if s.IsPending {
		if s.HasTimedOut {
			return PhaseUnauthenticated
		}
		return PhasePending
	}
	switch s.Outcome.Status {
	case SessionAuthenticated:
		if s.Outcome.IsAuthenticated() {
			return PhaseAuthenticated
		}
		return PhaseUnauthenticated
	case SessionUnauthenticated:
		return PhaseUnauthenticated
	default:
		return PhasePending
	}
}

// IsAuthenticated func
func (s ResolutionState) IsAuthenticated() bool {
	return s.Phase() == PhaseAuthenticated
}

// View is the screen set the route gate selects
type View string

const (
	// ViewLoading shows the spinner
	ViewLoading View = "loading"
	// ViewPublic shows the landing and other public routes
	ViewPublic View = "public"
	// ViewAuthenticated shows the signed-in application
	ViewAuthenticated View = "authenticated"
)
