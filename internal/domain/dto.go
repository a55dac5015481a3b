package domain

import (
	"github.com/google/uuid"
)

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// QueryEventRequest struct - Domain query request DTO for the diagnostics journal
	QueryEventRequest struct {
		Kind *EventKind

		Limit      *int
		Page       *int
		OrderBy    *string
		Asc        *bool
		Pagination *Pagination
		SortMethod *SortMethod
	}

	// Pagination struct
	Pagination struct {
		Limit  int
		Offset int
	}

	// SortMethod struct
	SortMethod struct {
		Asc     bool
		OrderBy string
	}

	// EventResponse struct - Domain response DTO
	EventResponse struct {
		ID         *uuid.UUID `json:"id,omitempty"`
		Kind       EventKind  `json:"kind"`
		Detail     string     `json:"detail,omitempty"`
		StatusCode int        `json:"status_code,omitempty"`
		OccurredAt string     `json:"occurred_at"`
	}

	// EventListResponse struct - Domain list response DTO
	EventListResponse struct {
		Events      []EventResponse
		CurrentPage *int
		PerPage     *int
		TotalItem   *int64
	}
)

// ToResponse converts a journal row into its response DTO
func (e SessionEvent) ToResponse() EventResponse {
	return EventResponse{
		ID:         e.ID,
		Kind:       e.Kind,
		Detail:     e.Detail,
		StatusCode: e.StatusCode,
		OccurredAt: e.OccurredAt.UTC().Format(DatetimeLayout),
	}
}
