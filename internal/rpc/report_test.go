package rpc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/report"
	"github.com/iliyamo/room-reservation/internal/repository"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gen := report.NewGenerator(repository.NewReportRepo(db), repository.NewRoomRepo(db))
	return NewHandler(gen), mock
}

func dispatch(h *Handler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.Dispatch(e.NewContext(req, rec))
	return rec
}

func TestDispatchEnvelope(t *testing.T) {
	t.Run("unknown method", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := dispatch(h, `{"method":"delete_everything","params":{}}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing method", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := dispatch(h, `{"params":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing room id", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := dispatch(h, `{"method":"generate_reservation_report","params":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateReservationReport(t *testing.T) {
	h, mock := newTestHandler(t)

	now := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "capacity",
			"street", "number", "district", "city", "state", "postal_code",
			"price_per_hour", "is_available", "created_at", "updated_at",
		}).AddRow(3, 1, "Sala Ipanema", "", 8,
			"Rua A", "10", "Centro", "Sao Paulo", "SP", "01000-000",
			80.0, true, now, now))
	mock.ExpectQuery("ORDER BY r.starts_at DESC").
		WithArgs(uint64(3), 500).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "cpf", "phone", "starts_at", "ends_at", "status", "total_price",
		}).AddRow(11, "Joana Prado", "12345678901", "+55 11 90000-0000",
			now, now.Add(90*time.Minute), "APPROVED", 120.0))

	rec := dispatch(h, `{"method":"generate_reservation_report","params":{"room_id":3,"sort":"recent"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"room_name":"Sala Ipanema"`)
	assert.Contains(t, body, `"duration":"1.5h"`)
	assert.Contains(t, body, `"total_price":"120.00"`)
	assert.Contains(t, body, `"sort":"RECENT"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateReservationReportRoomMissing(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := dispatch(h, `{"method":"generate_reservation_report","params":{"room_id":404}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
