package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterReservations registers the reservation lifecycle under /v1.
// All routes require a valid JWT.  Who may act on a reservation
// (requester vs. room owner) is decided per operation in the handlers.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/reservations", h.Request)
	g.GET("/reservations", h.List)
	g.GET("/reservations/:id", h.Get)
	g.PATCH("/reservations/:id", h.Update)
	g.PUT("/reservations/:id", h.Update)
	g.POST("/reservations/:id/respond", h.Respond)
	g.POST("/reservations/:id/cancel", h.Cancel)
}
