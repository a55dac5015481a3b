package input

import "creatorlink-shell/internal/domain"

// RouteGate interface - Input port
// Selects which screen set is reachable right now.
type RouteGate interface {
	View() domain.View
}
