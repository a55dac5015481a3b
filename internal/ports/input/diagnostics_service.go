package input

import "creatorlink-shell/internal/domain"

// DiagnosticsService interface - Input port (use case)
type DiagnosticsService interface {
	ListEvents(condition domain.QueryEventRequest) (*domain.EventListResponse, error)
}
