package router

import (
	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/handler"
	"github.com/zenithbooks/zenithbooks/internal/middleware"
)

// RegisterVault registers the owner's share-code and document endpoints.
func RegisterVault(e *echo.Echo, sc *handler.ShareCodeHandler, docs *handler.DocumentHandler, jwtSecret string) {
	g := ownerGroup(e, jwtSecret)

	// ---- Share codes ----
	g.POST("/share-codes", sc.Create)
	g.GET("/share-codes", sc.List)
	g.GET("/share-codes/:id", sc.Get)
	g.PATCH("/share-codes/:id", sc.Update)
	g.POST("/share-codes/:id/deactivate", sc.Deactivate)
	g.DELETE("/share-codes/:id", sc.Revoke)
	g.GET("/share-codes/:id/access-logs", sc.AccessLogs)

	// ---- Documents ----
	g.POST("/documents", docs.Register)
	g.GET("/documents", docs.List)
}

// RegisterAccess registers the public share-code routes.  limit guards
// every route, including code validation; the document routes also need a
// grant token that checker confirms on each request.
func RegisterAccess(e *echo.Echo, a *handler.AccessHandler, checker middleware.GrantChecker, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/access", limit)
	g.POST("", a.Validate)

	docs := g.Group("/documents", middleware.GrantAuth(a.Secret, checker))
	docs.GET("", a.ListDocuments)
	docs.GET("/:id", a.ViewDocument)
	docs.GET("/:id/download", a.Download)
}
