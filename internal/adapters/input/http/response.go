package http

import (
	"net/http"

	"creatorlink-shell/internal/domain"

	"github.com/google/uuid"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// Accepted response
	Accepted = Status{Code: http.StatusAccepted, Message: []string{"Accepted"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
	// BadGateway response
	BadGateway = Status{Code: http.StatusBadGateway, Message: []string{"Sorry, The session service did not accept the request"}}
	// Loading response
	Loading = Status{Code: http.StatusServiceUnavailable, Message: []string{"Session is still loading"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`

	CurrentPage *int   `json:"current_page,omitempty"`
	PerPage     *int   `json:"per_page,omitempty"`
	TotalItem   *int64 `json:"total_item,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// SessionResponse struct - HTTP response DTO for the resolution state
	SessionResponse struct {
		Phase       domain.Phase     `json:"phase"`
		Status      string           `json:"status"`
		IsPending   bool             `json:"is_pending"`
		HasTimedOut bool             `json:"has_timed_out"`
		View        domain.View      `json:"view"`
		User        *domain.Identity `json:"user,omitempty"`
	}

	// EventResponse struct - HTTP response DTO for a single journal event
	EventResponse struct {
		ID         *uuid.UUID `json:"id,omitempty" mapstructure:"id"`
		Kind       string     `json:"kind" mapstructure:"kind"`
		Detail     string     `json:"detail,omitempty" mapstructure:"detail"`
		StatusCode int        `json:"status_code,omitempty" mapstructure:"status_code"`
		OccurredAt string     `json:"occurred_at" mapstructure:"occurred_at"`
	}
)

func newSessionResponse(state domain.ResolutionState, view domain.View) SessionResponse {
	resp := SessionResponse{
		Phase:       state.Phase(),
		Status:      state.Outcome.Status.String(),
		IsPending:   state.IsPending,
		HasTimedOut: state.HasTimedOut,
		View:        view,
	}
	if state.IsAuthenticated() {
		user := state.Outcome.Identity
		resp.User = &user
	}
	return resp
}
