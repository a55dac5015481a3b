package postgres

import (
	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var _ output.EventJournal = (*EventRepository)(nil)

// sortable columns of session_events
var orderColumns = map[string]string{
	"occurred_at": "occurred_at",
	"kind":        "kind",
}

// EventRepository struct - Secondary/Driven adapter for PostgreSQL
type EventRepository struct {
	dbGorm *gorm.DB
}

// NewEventRepository func - Creates new PostgreSQL journal, migrating the schema first
func NewEventRepository(dbGorm *gorm.DB) (*EventRepository, error) {
	logrus.Info("Migrate database ...")
	if err := domain.MigrateDatabase(dbGorm); err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return &EventRepository{
		dbGorm: dbGorm,
	}, nil
}

// Record func - Inserts a journal row
func (p *EventRepository) Record(event domain.SessionEvent) error {
	if err := p.dbGorm.Create(&event).Error; err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

func (p *EventRepository) condition(condition domain.QueryEventRequest) map[string]interface{} {
	expression := make(map[string]interface{})
	if condition.Kind != nil {
		expression["kind"] = string(*condition.Kind)
	}
	return expression
}

// List func - Retrieves journal rows with filtering and pagination
func (p *EventRepository) List(condition domain.QueryEventRequest) (*domain.EventListResponse, error) {
	var (
		event  domain.SessionEvent
		events []domain.SessionEvent
	)
	tx := p.dbGorm.Model(&event).Where(p.condition(condition))

	var totalItem int64
	if err := tx.Count(&totalItem).Error; err != nil {
		logrus.Errorln(err)
		return nil, err
	}

	order := "occurred_at"
	asc := true
	if condition.SortMethod != nil {
		if column, ok := orderColumns[condition.SortMethod.OrderBy]; ok {
			order = column
		}
		asc = condition.SortMethod.Asc
	}
	if asc {
		tx = tx.Order(order + " ASC")
	} else {
		tx = tx.Order(order + " DESC")
	}
	if condition.Pagination != nil {
		tx = tx.Limit(condition.Pagination.Limit).Offset(condition.Pagination.Offset)
	}

	if err := tx.Find(&events).Error; err != nil {
		logrus.Errorln(err)
		return nil, err
	}

	result := domain.EventListResponse{
		Events:      make([]domain.EventResponse, 0, len(events)),
		CurrentPage: condition.Page,
		TotalItem:   &totalItem,
	}
	if condition.Pagination != nil {
		result.PerPage = &condition.Pagination.Limit
	}
	for _, e := range events {
		result.Events = append(result.Events, e.ToResponse())
	}
	return &result, nil
}
