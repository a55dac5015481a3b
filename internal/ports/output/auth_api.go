package output

import (
	"context"

	"creatorlink-shell/internal/domain"
)

// AuthAPI interface - Output port
// Defines what the application needs from the backend's cookie-session
// authentication endpoints.
type AuthAPI interface {
	// FetchUser asks the backend for the identity behind the current session
	// cookie. A 2xx answer returns the identity, which is not Present when the
	// body is empty or null. Errors wrap domain.ErrUnauthorized for 401,
	// domain.ErrTransportTimeout when the request deadline elapsed and
	// domain.ErrHardFailure for every other status or transport error.
	// No retry is attempted.
	FetchUser(ctx context.Context) (domain.Identity, error)

	// Logout ends the backend session. Any 2xx status is success.
	Logout(ctx context.Context) error
}
