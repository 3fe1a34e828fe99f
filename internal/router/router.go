package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/handler"
	"github.com/zenithbooks/zenithbooks/internal/middleware"
	"github.com/zenithbooks/zenithbooks/internal/model"
)

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the session endpoints.  Register, login, refresh
// and logout live under /v1/auth without a JWT; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Logout is also reachable at the top level.
	e.POST("/v1/logout", a.Logout)

	me := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	me.GET("/me", a.Me)
}

// ownerGroup returns a /v1 group that requires a signed-in vault owner.
func ownerGroup(e *echo.Echo, jwtSecret string) *echo.Group {
	return e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
}
