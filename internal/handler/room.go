package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomHandler exposes the room directory: open reads with filters and
// owner-scoped writes.  The creator of a room becomes its owner; the
// owner id is never taken from the request body.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler and panics if the repository is nil.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

// roomResp is the JSON projection of a room returned by every room
// endpoint.
type roomResp struct {
	ID           uint64    `json:"id"`
	OwnerID      uint64    `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Capacity     uint32    `json:"capacity"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	District     string    `json:"district"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	PricePerHour string    `json:"price_per_hour"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRoomResp(rm *model.Room) roomResp {
	return roomResp{
		ID:           rm.ID,
		OwnerID:      rm.OwnerID,
		Name:         rm.Name,
		Description:  rm.Description,
		Capacity:     rm.Capacity,
		Street:       rm.Street,
		Number:       rm.Number,
		District:     rm.District,
		City:         rm.City,
		State:        rm.State,
		PostalCode:   rm.PostalCode,
		PricePerHour: model.FormatPrice(rm.PricePerHour),
		IsAvailable:  rm.IsAvailable,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

type createRoomReq struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Capacity     uint32  `json:"capacity"`
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	District     string  `json:"district"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	PricePerHour float64 `json:"price_per_hour"`
	IsAvailable  *bool   `json:"is_available"`
}

// List handles GET /v1/rooms.  Optional query filters: city, state,
// available (true/false), owner_id, and mine=true which scopes the
// result to rooms owned by the caller.
func (h *RoomHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var f repository.RoomFilter
	f.City = strings.TrimSpace(c.QueryParam("city"))
	f.State = strings.TrimSpace(c.QueryParam("state"))
	if v := c.QueryParam("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid available flag"})
		}
		f.Available = &b
	}
	if v := c.QueryParam("owner_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid owner_id"})
		}
		f.OwnerID = id
	}
	if c.QueryParam("mine") == "true" {
		f.OwnerID = userID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rooms, err := h.Rooms.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	items := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, toRoomResp(rm))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toRoomResp(rm)})
}

// Create handles POST /v1/rooms.  Any authenticated user may create a
// room; the caller becomes the owner.
func (h *RoomHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.State = strings.ToUpper(strings.TrimSpace(req.State))
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if req.PricePerHour <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be positive"})
	}
	if len(req.State) != 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state must be a two-letter code"})
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	rm := &model.Room{
		OwnerID:      userID, // creator becomes owner, never client-supplied
		Name:         req.Name,
		Description:  req.Description,
		Capacity:     req.Capacity,
		Street:       req.Street,
		Number:       req.Number,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		PricePerHour: model.Round2(req.PricePerHour),
		IsAvailable:  available,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Rooms.Create(ctx, rm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toRoomResp(rm)})
}

type updateRoomReq struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Capacity     *uint32  `json:"capacity"`
	Street       *string  `json:"street"`
	Number       *string  `json:"number"`
	District     *string  `json:"district"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	PostalCode   *string  `json:"postal_code"`
	PricePerHour *float64 `json:"price_per_hour"`
	IsAvailable  *bool    `json:"is_available"`
}

// Update handles PUT/PATCH /v1/rooms/:id.  Only the owner may update;
// absent fields keep their current values.
func (h *RoomHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity != nil && *req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if req.PricePerHour != nil && *req.PricePerHour <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be positive"})
	}
	if req.State != nil && len(strings.TrimSpace(*req.State)) != 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state must be a two-letter code"})
	}
	if req.PricePerHour != nil {
		rounded := model.Round2(*req.PricePerHour)
		req.PricePerHour = &rounded
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rm, err := h.Rooms.Update(ctx, id, userID, repository.RoomUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Capacity:     req.Capacity,
		Street:       req.Street,
		Number:       req.Number,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		PricePerHour: req.PricePerHour,
		IsAvailable:  req.IsAvailable,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner may update a room"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toRoomResp(rm)})
}

// Delete handles DELETE /v1/rooms/:id.  Only the owner may delete.
func (h *RoomHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Rooms.DeleteByIDAndOwner(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner may delete a room"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
	}
	return c.NoContent(http.StatusNoContent)
}
