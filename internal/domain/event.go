package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventKind type
type EventKind string

const (
	// EventFetchAuthenticated const
	EventFetchAuthenticated EventKind = "FETCH_AUTHENTICATED"
	// EventFetchUnauthenticated const
	EventFetchUnauthenticated EventKind = "FETCH_UNAUTHENTICATED"
	// EventFetchTimeout const
	EventFetchTimeout EventKind = "FETCH_TIMEOUT"
	// EventFetchFailed const
	EventFetchFailed EventKind = "FETCH_FAILED"
	// EventFetchSuperseded const
	EventFetchSuperseded EventKind = "FETCH_SUPERSEDED"
	// EventPendingTimeout const
	EventPendingTimeout EventKind = "PENDING_TIMEOUT"
	// EventLogout const
	EventLogout EventKind = "LOGOUT"
	// EventLogoutFailed const
	EventLogoutFailed EventKind = "LOGOUT_FAILED"
	// EventInvalidate const
	EventInvalidate EventKind = "INVALIDATE"
)

// EventKinds lists every kind the journal records
var EventKinds = []EventKind{
	EventFetchAuthenticated,
	EventFetchUnauthenticated,
	EventFetchTimeout,
	EventFetchFailed,
	EventFetchSuperseded,
	EventPendingTimeout,
	EventLogout,
	EventLogoutFailed,
	EventInvalidate,
}

// SessionEvent struct - diagnostics journal entry
type SessionEvent struct {
	ID         *uuid.UUID `gorm:"type:uuid;primary_key;"`
	Kind       EventKind  `gorm:"type:varchar(32);not null;index"`
	Detail     string     `gorm:"type:text"`
	StatusCode int        `gorm:"type:integer"`
	OccurredAt time.Time  `gorm:"type:timestamp;not null;index"`
}

// TableName func
func (e *SessionEvent) TableName() string {
	return "session_events"
}

// BeforeCreate hook - generates UUID before creating
func (e *SessionEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID != nil {
		return nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	e.ID = &id
	return nil
}

// NewSessionEvent func
func NewSessionEvent(kind EventKind, detail string, statusCode int, at time.Time) SessionEvent {
	return SessionEvent{
		Kind:       kind,
		Detail:     detail,
		StatusCode: statusCode,
		OccurredAt: at,
	}
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	return db.AutoMigrate(&SessionEvent{})
}
