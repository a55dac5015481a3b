package domain

import "errors"

// Session error types

var (
	// ErrTransportTimeout indicates the identity request exceeded its deadline.
	// Callers treat it as unauthenticated, not as a failure.
	ErrTransportTimeout = errors.New("auth request timeout")

	// ErrUnauthorized indicates the backend answered 401
	ErrUnauthorized = errors.New("unauthorized")

	// ErrHardFailure indicates any other non-2xx status or transport error
	ErrHardFailure = errors.New("auth service failure")

	// ErrLogoutFailed indicates the backend did not accept the logout
	ErrLogoutFailed = errors.New("logout failed")

	// ErrInvalidCacheWindow indicates staleAfter > evictAfter or a non-positive window
	ErrInvalidCacheWindow = errors.New("invalid cache window")

	// ErrNoIdentity indicates an identity was read from an unauthenticated result
	ErrNoIdentity = errors.New("no identity")
)

// StatusCodeOf returns the HTTP status carried by an auth error, or 0 when
// the error did not come from a backend answer
func StatusCodeOf(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	if errors.Is(err, ErrUnauthorized) {
		return 401
	}
	return 0
}
