package application

import (
	"math"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/input"
	"creatorlink-shell/internal/ports/output"

	"github.com/sirupsen/logrus"
)

var _ input.DiagnosticsService = (*DiagnosticsService)(nil)

// DiagnosticsService struct - Application service for the session event journal
type DiagnosticsService struct {
	journal output.EventJournal
}

// NewDiagnosticsService func - Creates new diagnostics service
func NewDiagnosticsService(journal output.EventJournal) *DiagnosticsService {
	return &DiagnosticsService{
		journal: journal,
	}
}

// ListEvents func - Use case: list journal events with pagination and filtering
func (s *DiagnosticsService) ListEvents(condition domain.QueryEventRequest) (*domain.EventListResponse, error) {
	var (
		page    int
		perPage int
		offset  int
	)
	if condition.Page != nil && *condition.Page > 0 {
		page = *condition.Page
	} else {
		page = 1
	}
	condition.Page = &page
	if condition.Limit != nil {
		perPage = *condition.Limit
	} else {
		perPage = 100
		condition.Limit = &perPage
	}
	switch {
	case perPage > 0 && page-1 > math.MaxInt/perPage:
		offset = math.MaxInt
	case perPage >= 0:
		offset = (page - 1) * perPage
	}
	condition.Pagination = &domain.Pagination{
		Limit:  perPage,
		Offset: offset,
	}
	asc := false
	if condition.Asc != nil {
		asc = *condition.Asc
	}
	orderBy := "occurred_at"
	if condition.OrderBy != nil && *condition.OrderBy != "" {
		orderBy = *condition.OrderBy
	}
	condition.SortMethod = &domain.SortMethod{
		Asc:     asc,
		OrderBy: orderBy,
	}

	result, err := s.journal.List(condition)
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return result, nil
}
