package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/sharecode"
	"github.com/zenithbooks/zenithbooks/internal/utils"
)

// GrantChecker confirms a grant's share code is still usable and returns
// the grant limited to the code's current categories.
type GrantChecker interface {
	CheckGrant(ctx context.Context, g sharecode.Grant) (sharecode.Grant, error)
}

// GrantAuth validates a Bearer grant token and re-checks the share code on
// every request, so a deactivated or revoked code stops working at once and
// categories removed from the code are no longer reachable.
func GrantAuth(secret string, checker GrantChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing grant token"})
			}
			claims, err := utils.ParseGrantToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid grant token"})
			}
			g := sharecode.Grant{
				ShareCodeID: claims.Subject,
				OwnerID:     claims.OwnerID,
				Categories:  claims.Categories,
			}
			if claims.ExpiresAt != nil {
				g.ExpiresAt = claims.ExpiresAt.Time
			}
			g, err = checker.CheckGrant(c.Request().Context(), g)
			if err != nil {
				if errors.Is(err, sharecode.ErrNotFoundOrExpired) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": sharecode.ErrNotFoundOrExpired.Error()})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant check failed"})
			}
			c.Set(CtxGrant, g)
			return next(c)
		}
	}
}
