package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

// Context keys set by JWTAuth and GrantAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxGrant  = "grant"
)

// UserID returns the authenticated owner id set by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// GrantFrom returns the share-code grant set by GrantAuth.
func GrantFrom(c echo.Context) (sharecode.Grant, bool) {
	g, ok := c.Get(CtxGrant).(sharecode.Grant)
	return g, ok
}

// principal names whoever is calling: an owner, a grant holder or "anon".
func principal(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return "user:" + strconv.FormatUint(id, 10)
	}
	if g, ok := GrantFrom(c); ok {
		return "grant:" + g.ShareCodeID
	}
	return "anon"
}
