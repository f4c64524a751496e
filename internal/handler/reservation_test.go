package handler

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

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

func newTestReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationHandler(repository.NewReservationRepo(db), repository.NewRoomRepo(db)), mock
}

// reservationCall invokes a reservation handler method the way the
// router would: JSON body bound, user_id in context, :id path param set
// when given.
func reservationCall(h echo.HandlerFunc, method, body string, userID uint64, paramID string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	_ = h(c)
	return rec
}

// infoColumns mirrors the projection loaded for authorization checks.
func infoColumns() []string {
	return []string{
		"id", "requester_id", "room_id", "starts_at", "ends_at",
		"total_price", "payment_method", "status", "created_at", "updated_at",
		"owner_id", "room_name", "requester_name",
	}
}

func infoRow(requesterID, ownerID uint64, status string) *sqlmock.Rows {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(infoColumns()).AddRow(
		uint64(5), requesterID, uint64(3), start, start.Add(2*time.Hour),
		100.0, model.PaymentPix, status, start, start,
		ownerID, "Sala Ipanema", "Joana Prado")
}

func availableRoomRow(ownerID uint64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description", "capacity",
		"street", "number", "district", "city", "state", "postal_code",
		"price_per_hour", "is_available", "created_at", "updated_at",
	}).AddRow(3, ownerID, "Sala Ipanema", "", 8,
		"Rua A", "10", "Centro", "Sao Paulo", "SP", "01000-000",
		50.0, true, now, now)
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing room id", `{"starts_at":"2026-07-01T10:00:00Z","ends_at":"2026-07-01T12:00:00Z","payment_method":"PIX"}`},
		{"start after end", `{"room_id":3,"starts_at":"2026-07-01T12:00:00Z","ends_at":"2026-07-01T10:00:00Z","payment_method":"PIX"}`},
		{"zero length range", `{"room_id":3,"starts_at":"2026-07-01T10:00:00Z","ends_at":"2026-07-01T10:00:00Z","payment_method":"PIX"}`},
		{"unknown payment method", `{"room_id":3,"starts_at":"2026-07-01T10:00:00Z","ends_at":"2026-07-01T12:00:00Z","payment_method":"BARTER"}`},
		{"missing times", `{"room_id":3,"payment_method":"PIX"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestReservationHandler(t)
			rec := reservationCall(h.Request, http.MethodPost, tt.body, 1, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			// validation failures never reach the database
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestOverlapConflict(t *testing.T) {
	h, mock := newTestReservationHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs(uint64(3)).
		WillReturnRows(availableRoomRow(2))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	body := `{"room_id":3,"starts_at":"2026-07-01T10:30:00Z","ends_at":"2026-07-01T11:30:00Z","payment_method":"PIX"}`
	rec := reservationCall(h.Request, http.MethodPost, body, 1, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRoomClosedForReservations(t *testing.T) {
	h, mock := newTestReservationHandler(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "capacity",
			"street", "number", "district", "city", "state", "postal_code",
			"price_per_hour", "is_available", "created_at", "updated_at",
		}).AddRow(3, 2, "Sala Ipanema", "", 8,
			"Rua A", "10", "Centro", "Sao Paulo", "SP", "01000-000",
			50.0, false, now, now))

	body := `{"room_id":3,"starts_at":"2026-07-01T10:00:00Z","ends_at":"2026-07-01T12:00:00Z","payment_method":"PIX"}`
	rec := reservationCall(h.Request, http.MethodPost, body, 1, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRespondAuthorization(t *testing.T) {
	t.Run("unknown action", func(t *testing.T) {
		h, mock := newTestReservationHandler(t)
		rec := reservationCall(h.Respond, http.MethodPost, `{"action":"MAYBE"}`, 2, "5")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("only the room owner may respond", func(t *testing.T) {
		h, mock := newTestReservationHandler(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.requester_id").
			WithArgs(uint64(5)).
			WillReturnRows(infoRow(1, 2, model.StatusRequested))
		mock.ExpectRollback()

		// caller 9 is neither owner nor requester
		rec := reservationCall(h.Respond, http.MethodPost, `{"action":"APPROVE"}`, 9, "5")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requester cannot respond to their own request", func(t *testing.T) {
		h, mock := newTestReservationHandler(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.requester_id").
			WithArgs(uint64(5)).
			WillReturnRows(infoRow(1, 2, model.StatusRequested))
		mock.ExpectRollback()

		rec := reservationCall(h.Respond, http.MethodPost, `{"action":"REJECT"}`, 1, "5")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("settled reservation cannot be responded to", func(t *testing.T) {
		h, mock := newTestReservationHandler(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.requester_id").
			WithArgs(uint64(5)).
			WillReturnRows(infoRow(1, 2, model.StatusCancelled))
		mock.ExpectRollback()

		rec := reservationCall(h.Respond, http.MethodPost, `{"action":"APPROVE"}`, 2, "5")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCancelAuthorization(t *testing.T) {
	t.Run("only the requester may cancel", func(t *testing.T) {
		h, mock := newTestReservationHandler(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.requester_id").
			WithArgs(uint64(5)).
			WillReturnRows(infoRow(1, 2, model.StatusRequested))
		mock.ExpectRollback()

		// caller 2 owns the room but did not request the reservation
		rec := reservationCall(h.Cancel, http.MethodPost, ``, 2, "5")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal statuses conflict", func(t *testing.T) {
		for _, status := range []string{model.StatusRejected, model.StatusCancelled, model.StatusCompleted} {
			t.Run(status, func(t *testing.T) {
				h, mock := newTestReservationHandler(t)
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT r.id, r.requester_id").
					WithArgs(uint64(5)).
					WillReturnRows(infoRow(1, 2, status))
				mock.ExpectRollback()

				rec := reservationCall(h.Cancel, http.MethodPost, ``, 1, "5")
				assert.Equal(t, http.StatusConflict, rec.Code)
			})
		}
	})
}

func TestUpdateOnlyWhileRequested(t *testing.T) {
	h, mock := newTestReservationHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.requester_id").
		WithArgs(uint64(5)).
		WillReturnRows(infoRow(1, 2, model.StatusApproved))
	mock.ExpectRollback()

	body := `{"starts_at":"2026-07-02T10:00:00Z","ends_at":"2026-07-02T12:00:00Z"}`
	rec := reservationCall(h.Update, http.MethodPatch, body, 1, "5")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
