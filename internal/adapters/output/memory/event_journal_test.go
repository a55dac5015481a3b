package memory

import (
	"math"
	"testing"
	"time"

	"creatorlink-shell/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestEventJournalRecordAssignsID(t *testing.T) {
	journal := NewEventJournal(10)
	require.NoError(t, journal.Record(domain.NewSessionEvent(domain.EventLogout, "", 200, time.Now())))

	result, err := journal.List(domain.QueryEventRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	require.NotNil(t, result.Events[0].ID)
	require.Equal(t, int64(1), *result.TotalItem)
}

func TestEventJournalDropsOldestAtCapacity(t *testing.T) {
	journal := NewEventJournal(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, journal.Record(domain.NewSessionEvent(domain.EventFetchTimeout, "", i, base.Add(time.Duration(i)*time.Second))))
	}

	result, err := journal.List(domain.QueryEventRequest{})
	require.NoError(t, err)
	require.Len(t, result.Events, 3)
	require.Equal(t, 2, result.Events[0].StatusCode)
	require.Equal(t, 4, result.Events[2].StatusCode)
}

func TestEventJournalFilterSortAndPage(t *testing.T) {
	journal := NewEventJournal(0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kinds := []domain.EventKind{
		domain.EventFetchFailed,
		domain.EventPendingTimeout,
		domain.EventFetchFailed,
		domain.EventFetchFailed,
	}
	for i, kind := range kinds {
		require.NoError(t, journal.Record(domain.NewSessionEvent(kind, "", 500+i, base.Add(time.Duration(i)*time.Minute))))
	}

	kind := domain.EventFetchFailed
	page := 1
	result, err := journal.List(domain.QueryEventRequest{
		Kind:       &kind,
		Page:       &page,
		Pagination: &domain.Pagination{Limit: 2, Offset: 0},
		SortMethod: &domain.SortMethod{Asc: false, OrderBy: "occurred_at"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), *result.TotalItem)
	require.Equal(t, 2, *result.PerPage)
	require.Len(t, result.Events, 2)
	require.Equal(t, 503, result.Events[0].StatusCode)
	require.Equal(t, 502, result.Events[1].StatusCode)
}

func TestEventJournalOutOfRangePagination(t *testing.T) {
	journal := NewEventJournal(0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, journal.Record(domain.NewSessionEvent(domain.EventLogout, "", 200, base.Add(time.Duration(i)*time.Second))))
	}

	tests := []struct {
		name       string
		pagination domain.Pagination
		want       int
	}{
		{"negative offset", domain.Pagination{Limit: 2, Offset: -5}, 2},
		{"offset past the end", domain.Pagination{Limit: 2, Offset: 10}, 0},
		{"largest offset", domain.Pagination{Limit: 100, Offset: math.MaxInt}, 0},
		{"largest limit", domain.Pagination{Limit: math.MaxInt, Offset: 1}, 2},
		{"unlimited", domain.Pagination{Limit: -1, Offset: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pagination := tt.pagination
			result, err := journal.List(domain.QueryEventRequest{Pagination: &pagination})
			require.NoError(t, err)
			require.Len(t, result.Events, tt.want)
			require.Equal(t, int64(3), *result.TotalItem)
		})
	}
}
