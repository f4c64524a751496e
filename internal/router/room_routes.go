package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterRooms registers the room directory under /v1.  All routes
// require a valid JWT; ownership checks happen in the handlers.  The
// cache middleware, when enabled, is applied to the read endpoints
// only.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/rooms", h.List, cache)
	g.GET("/rooms/:id", h.Get, cache)
	g.POST("/rooms", h.Create)
	g.PUT("/rooms/:id", h.Update)
	g.PATCH("/rooms/:id", h.Update) // allow partial updates via PATCH as well
	g.DELETE("/rooms/:id", h.Delete)
}
