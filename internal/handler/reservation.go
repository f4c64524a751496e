package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/room-reservation/internal/service"
)

// lockTimeout bounds how long a create or edit waits for the per-room
// advisory lock before giving up with a conflict.
const lockTimeout = 3 * time.Second

// ReservationHandler drives the reservation lifecycle: requesters
// create, edit and cancel; room owners approve or reject.  Every write
// runs inside a transaction holding the room's advisory lock so
// concurrent requests for the same room serialize on the availability
// check.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Rooms        *repository.RoomRepo
}

// NewReservationHandler constructs a ReservationHandler and panics if a
// repository is nil.
func NewReservationHandler(reservations *repository.ReservationRepo, rooms *repository.RoomRepo) *ReservationHandler {
	if reservations == nil || rooms == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Rooms: rooms}
}

// reservationResp is the JSON projection returned by reservation
// endpoints.  Total price is a fixed two-decimal string so clients
// never see float artifacts.
type reservationResp struct {
	ID            uint64    `json:"id"`
	RoomID        uint64    `json:"room_id"`
	RoomName      string    `json:"room_name,omitempty"`
	RequesterID   uint64    `json:"requester_id"`
	RequesterName string    `json:"requester_name,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	TotalPrice    string    `json:"total_price"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toReservationResp(info *repository.ReservationInfo) reservationResp {
	return reservationResp{
		ID:            info.ID,
		RoomID:        info.RoomID,
		RoomName:      info.RoomName,
		RequesterID:   info.RequesterID,
		RequesterName: info.RequesterName,
		StartsAt:      info.StartsAt,
		EndsAt:        info.EndsAt,
		TotalPrice:    model.FormatPrice(info.TotalPrice),
		PaymentMethod: info.PaymentMethod,
		Status:        info.Status,
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
	}
}

// publishEvent ships a lifecycle event to the broker without blocking
// the request.  Publish failures are logged inside the publisher and
// never surface to the client.
func publishEvent(eventName string, info *repository.ReservationInfo) {
	ev := queue.ReservationEvent{
		Event:         eventName,
		ReservationID: info.ID,
		RoomID:        info.RoomID,
		RoomName:      info.RoomName,
		RequesterID:   info.RequesterID,
		RequesterName: info.RequesterName,
		StartsAt:      info.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        info.EndsAt.UTC().Format(time.RFC3339),
		TotalPrice:    model.FormatPrice(info.TotalPrice),
		PaymentMethod: info.PaymentMethod,
		Status:        info.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationEvent(ctx, ev)
	}()
}

type createReservationReq struct {
	RoomID        uint64    `json:"room_id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	PaymentMethod string    `json:"payment_method"`
}

// Request handles POST /v1/reservations.  It validates the time range
// and payment method, prices the window server-side from the room's
// hourly rate, and inserts the reservation as REQUESTED after an
// overlap check against active reservations, all under the room's
// advisory lock.
func (h *ReservationHandler) Request(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at and ends_at are required"})
	}
	start := req.StartsAt.UTC()
	end := req.EndsAt.UTC()
	if !start.Before(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be before ends_at"})
	}
	method := model.NormalizePaymentMethod(req.PaymentMethod)
	if !model.IsValidPaymentMethod(method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout+lockTimeout)
	defer cancel()

	rm, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !rm.IsAvailable {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is not accepting reservations"})
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Reservations.LockRoomTx(ctx, tx, rm.ID, lockTimeout); err != nil {
		if errors.Is(err, repository.ErrTimeConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room is busy, try again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock room"})
	}
	overlap, err := h.Reservations.HasOverlapTx(ctx, tx, rm.ID, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is already reserved for this period"})
	}

	res := &model.Reservation{
		RequesterID:   userID,
		RoomID:        rm.ID,
		StartsAt:      start,
		EndsAt:        end,
		TotalPrice:    model.TotalPrice(rm.PricePerHour, start, end),
		PaymentMethod: method,
		Status:        model.StatusRequested,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	info := &repository.ReservationInfo{Reservation: *res, RoomOwnerID: rm.OwnerID, RoomName: rm.Name}
	publishEvent(queue.EventReservationRequested, info)
	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationResp(info)})
}

// List handles GET /v1/reservations.  It returns every reservation the
// caller requested plus every reservation received by rooms the caller
// owns, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Reservations.ListForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id.  Only the requester and the
// room owner may see a reservation; anyone else gets 404 so the
// endpoint does not leak which ids exist.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	info, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if info.RequesterID != userID && info.RoomOwnerID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(info)})
}

type updateReservationReq struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Update handles PATCH /v1/reservations/:id.  Only the requester may
// move a reservation, and only while it is still REQUESTED.  The new
// window is re-checked for overlaps (excluding the reservation itself)
// and the total price recomputed from the room's current rate.
func (h *ReservationHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at and ends_at are required"})
	}
	start := req.StartsAt.UTC()
	end := req.EndsAt.UTC()
	if !start.Before(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be before ends_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout+lockTimeout)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if info.RequesterID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the requester may edit"})
	}
	if info.Status != model.StatusRequested {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only pending reservations can be edited"})
	}

	if err := h.Reservations.LockRoomTx(ctx, tx, info.RoomID, lockTimeout); err != nil {
		if errors.Is(err, repository.ErrTimeConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room is busy, try again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock room"})
	}
	overlap, err := h.Reservations.HasOverlapTx(ctx, tx, info.RoomID, start, end, info.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is already reserved for this period"})
	}

	rm, err := h.Rooms.GetByID(ctx, info.RoomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	price := model.TotalPrice(rm.PricePerHour, start, end)
	if err := h.Reservations.UpdateWindowTx(ctx, tx, info.ID, start, end, price); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	info.StartsAt = start
	info.EndsAt = end
	info.TotalPrice = price
	info.UpdatedAt = time.Now().UTC()
	publishEvent(queue.EventReservationUpdated, info)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(info)})
}

type respondReq struct {
	Action string `json:"action"`
}

// Respond handles POST /v1/reservations/:id/respond with an action of
// APPROVE or REJECT.  Only the room owner may respond.  A response may
// overwrite a previous one; flipping a rejection back to approved
// re-runs the overlap check since the slot may have been given away in
// the meantime.
func (h *ReservationHandler) Respond(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req respondReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var target string
	switch strings.ToUpper(strings.TrimSpace(req.Action)) {
	case "APPROVE":
		target = model.StatusApproved
	case "REJECT":
		target = model.StatusRejected
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be APPROVE or REJECT"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout+lockTimeout)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if info.RoomOwnerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the room owner may respond"})
	}
	if !model.CanRespond(info.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be responded to"})
	}

	if target == model.StatusApproved && info.Status != model.StatusApproved {
		// The slot may have been taken while this request sat rejected.
		if err := h.Reservations.LockRoomTx(ctx, tx, info.RoomID, lockTimeout); err != nil {
			if errors.Is(err, repository.ErrTimeConflict) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "room is busy, try again"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock room"})
		}
		overlap, err := h.Reservations.HasOverlapTx(ctx, tx, info.RoomID, info.StartsAt, info.EndsAt, info.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
		}
		if overlap {
			return c.JSON(http.StatusConflict, echo.Map{"error": "period is no longer available"})
		}
	}

	if err := h.Reservations.UpdateStatusTx(ctx, tx, info.ID, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	info.Status = target
	info.UpdatedAt = time.Now().UTC()
	if target == model.StatusApproved {
		publishEvent(queue.EventReservationApproved, info)
	} else {
		publishEvent(queue.EventReservationRejected, info)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(info)})
}

// Cancel handles POST /v1/reservations/:id/cancel.  Only the requester
// may cancel, and only while the reservation is REQUESTED or APPROVED;
// cancelling frees the slot for others.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if info.RequesterID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the requester may cancel"})
	}
	if !model.CanCancel(info.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is already finalized"})
	}

	if err := h.Reservations.UpdateStatusTx(ctx, tx, info.ID, model.StatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	info.Status = model.StatusCancelled
	info.UpdatedAt = time.Now().UTC()
	publishEvent(queue.EventReservationCancelled, info)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(info)})
}
