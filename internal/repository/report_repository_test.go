package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "cpf", "phone", "starts_at", "ends_at", "status", "total_price",
	})
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rows.AddRow(uint64(i+1), "Requester", "12345678901", "+55 11 90000-0000",
			start, start.Add(time.Hour), "APPROVED", 80.0)
	}
	return rows
}

func TestReportListByRoomSorts(t *testing.T) {
	tests := []struct {
		name        string
		sort        string
		orderClause string
	}{
		{"recent is the default", "", `ORDER BY r.starts_at DESC`},
		{"oldest first", SortOldest, `ORDER BY r.starts_at ASC`},
		{"longest duration", SortLongestDuration, `ORDER BY TIMESTAMPDIFF\(SECOND, r.starts_at, r.ends_at\) DESC`},
		{"unknown falls back to recent", "WEIRD", `ORDER BY r.starts_at DESC`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewReportRepo(db)

			mock.ExpectQuery(tt.orderClause).
				WithArgs(uint64(4)).
				WillReturnRows(reportRows(2))

			rows, err := repo.ListByRoom(context.Background(), 4, 0, tt.sort)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReportListByRoomLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReportRepo(db)

	mock.ExpectQuery(`LIMIT \?`).
		WithArgs(uint64(4), 1).
		WillReturnRows(reportRows(1))

	rows, err := repo.ListByRoom(context.Background(), 4, 1, SortRecent)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345678901", rows[0].RequesterCPF)
	assert.Equal(t, 80.0, rows[0].TotalPrice)
}
