package memory

import (
	"sort"
	"sync"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"

	"github.com/google/uuid"
)

var _ output.EventJournal = (*EventJournal)(nil)

// DefaultJournalCapacity is used when no capacity is given
const DefaultJournalCapacity = 1000

// EventJournal struct - bounded in-memory diagnostics journal.
// Oldest events are dropped once capacity is reached.
type EventJournal struct {
	mu       sync.RWMutex
	events   []domain.SessionEvent
	capacity int
}

// NewEventJournal func
func NewEventJournal(capacity int) *EventJournal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &EventJournal{capacity: capacity}
}

// Record appends an event
func (j *EventJournal) Record(event domain.SessionEvent) error {
	if event.ID == nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return err
		}
		event.ID = &id
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.events) >= j.capacity {
		j.events = append(j.events[:0], j.events[len(j.events)-j.capacity+1:]...)
	}
	j.events = append(j.events, event)
	return nil
}

// List filters, sorts and pages the journal
func (j *EventJournal) List(condition domain.QueryEventRequest) (*domain.EventListResponse, error) {
	j.mu.RLock()
	matched := make([]domain.SessionEvent, 0, len(j.events))
	for _, e := range j.events {
		if condition.Kind != nil && e.Kind != *condition.Kind {
			continue
		}
		matched = append(matched, e)
	}
	j.mu.RUnlock()

	asc, orderBy := true, "occurred_at"
	if condition.SortMethod != nil {
		asc = condition.SortMethod.Asc
		if condition.SortMethod.OrderBy != "" {
			orderBy = condition.SortMethod.OrderBy
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		x, y := matched[a], matched[b]
		if !asc {
			x, y = y, x
		}
		if orderBy == "kind" {
			return x.Kind < y.Kind
		}
		return x.OccurredAt.Before(y.OccurredAt)
	})

	total := int64(len(matched))
	if p := condition.Pagination; p != nil {
		start := max(0, min(p.Offset, len(matched)))
		end := len(matched)
		if p.Limit >= 0 && p.Limit < end-start {
			end = start + p.Limit
		}
		matched = matched[start:end]
	}

	result := domain.EventListResponse{
		Events:      make([]domain.EventResponse, 0, len(matched)),
		CurrentPage: condition.Page,
		TotalItem:   &total,
	}
	if condition.Pagination != nil {
		result.PerPage = &condition.Pagination.Limit
	}
	for _, e := range matched {
		result.Events = append(result.Events, e.ToResponse())
	}
	return &result, nil
}
