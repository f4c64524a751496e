// Package rpc exposes the internal reporting interface as a single
// JSON-RPC style endpoint: POST /rpc with a method name and params
// object. Keeping the envelope method-addressed leaves room for more
// back-office procedures without new routes.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/report"
	"github.com/iliyamo/room-reservation/internal/repository"
)

const rpcTimeout = 10 * time.Second

// MethodGenerateReservationReport is the reporting procedure name.
const MethodGenerateReservationReport = "generate_reservation_report"

// request is the RPC envelope. Params stay raw until the method is
// dispatched so each procedure can define its own parameter shape.
type request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Handler dispatches RPC envelopes to their procedures.
type Handler struct {
	Reports *report.Generator
}

// NewHandler returns an RPC Handler backed by the given report generator.
func NewHandler(reports *report.Generator) *Handler {
	if reports == nil {
		panic("nil generator passed to rpc.NewHandler")
	}
	return &Handler{Reports: reports}
}

// Dispatch handles POST /rpc.
func (h *Handler) Dispatch(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Method {
	case MethodGenerateReservationReport:
		return h.generateReservationReport(c, req.Params)
	case "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method is required"})
	default:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown method"})
	}
}

func (h *Handler) generateReservationReport(c echo.Context, raw json.RawMessage) error {
	var p report.Params
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid params"})
		}
	}
	if p.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "params.room_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), rpcTimeout)
	defer cancel()

	rep, err := h.Reports.Generate(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate report"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": rep})
}
