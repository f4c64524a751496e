package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

func TestNormalizeSort(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"RECENT", repository.SortRecent},
		{"recent", repository.SortRecent},
		{"OLDEST", repository.SortOldest},
		{" oldest ", repository.SortOldest},
		{"longest_duration", repository.SortLongestDuration},
		{"LONGEST_DURATION", repository.SortLongestDuration},
		{"", repository.SortRecent},
		{"bogus", repository.SortRecent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, NormalizeSort(tt.in), "in=%q", tt.in)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 0, ClampLimit(-5))
	assert.Equal(t, 0, ClampLimit(0))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, maxRows, ClampLimit(maxRows))
	assert.Equal(t, maxRows, ClampLimit(maxRows+1))
}

func TestFormatRow(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	row := FormatRow(repository.ReportRow{
		ID:             42,
		RequesterName:  "Joana Prado",
		RequesterCPF:   "12345678901",
		RequesterPhone: "+55 11 98888-7777",
		StartsAt:       start,
		EndsAt:         start.Add(90 * time.Minute),
		Status:         model.StatusApproved,
		TotalPrice:     112.5,
	})

	assert.Equal(t, uint64(42), row.ReservationID)
	assert.Equal(t, "Joana Prado", row.RequesterName)
	assert.Equal(t, "2026-04-01T09:00:00Z", row.StartsAt)
	assert.Equal(t, "2026-04-01T10:30:00Z", row.EndsAt)
	assert.Equal(t, "1.5h", row.Duration)
	assert.Equal(t, "APPROVED", row.Status)
	assert.Equal(t, "112.50", row.TotalPrice)
}

func TestFormatRowWholeHour(t *testing.T) {
	start := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)
	row := FormatRow(repository.ReportRow{
		StartsAt:   start,
		EndsAt:     start.Add(time.Hour),
		TotalPrice: 50,
	})
	assert.Equal(t, "1.0h", row.Duration)
	assert.Equal(t, "50.00", row.TotalPrice)
}
