package output

import "creatorlink-shell/internal/domain"

// EventJournal interface - Output port
// Diagnostics journal for session resolution events.
type EventJournal interface {
	Record(event domain.SessionEvent) error
	List(condition domain.QueryEventRequest) (*domain.EventListResponse, error)
}
