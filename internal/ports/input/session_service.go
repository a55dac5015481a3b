package input

import (
	"context"

	"creatorlink-shell/internal/domain"
)

// SessionService interface - Input port (use case)
// The single read and single command the rest of the application gets.
type SessionService interface {
	// State returns the current resolution state
	State() domain.ResolutionState

	// Resolve deliberately starts a new resolution attempt. It returns
	// immediately; progress is published through State and listeners.
	Resolve(ctx context.Context)

	// Refresh drops the cached session and resolves again
	Refresh(ctx context.Context)

	// Logout ends the session. On success the state is pinned to
	// unauthenticated before Logout returns.
	Logout(ctx context.Context) error
}
