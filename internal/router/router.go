// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/rpc"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations (register, login, refresh, logout) live under /v1/auth;
// the profile endpoint lives under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout invalidates the refresh token passed in the body, so it
	// does not require an access token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterRPC mounts the method-addressed RPC endpoint used by internal
// reporting tools.  It sits behind the same JWT middleware as the rest
// of the API.
func RegisterRPC(e *echo.Echo, h *rpc.Handler, jwtSecret string) {
	e.POST("/rpc", h.Dispatch, middleware.JWTAuth(jwtSecret))
}
