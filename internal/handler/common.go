// Package handler holds the Echo handlers for owners, grant holders and the
// ledger reports.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/middleware"
	"github.com/zenithbooks/zenithbooks/internal/repository"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

const dateLayout = "2006-01-02"

var errUnauthorized = errors.New("unauthorized")

// ownerID returns the authenticated user or an error the caller can hand
// straight to respondError.
func ownerID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errUnauthorized
	}
	return id, nil
}

// respondError maps domain and repository errors to JSON responses.
// Anything unrecognised is returned to Echo's error handler as a 500.
func respondError(c echo.Context, err error) error {
	var rl *sharecode.RateLimitedError
	switch {
	case errors.As(err, &rl):
		secs := int((rl.RetryAfter + time.Second - 1) / time.Second)
		c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": rl.Error(), "retry_after": secs})
	case errors.Is(err, errUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, sharecode.ErrNotFoundOrExpired),
		errors.Is(err, sharecode.ErrDocumentNotFound),
		errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMessage(err)})
	case errors.Is(err, sharecode.ErrCollision),
		errors.Is(err, sharecode.ErrSecretInUse),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, sharecode.ErrInvalidSecret),
		errors.Is(err, sharecode.ErrNoCategories),
		errors.Is(err, sharecode.ErrNameRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return err
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, sharecode.ErrNotFoundOrExpired):
		return sharecode.ErrNotFoundOrExpired.Error()
	case errors.Is(err, sharecode.ErrDocumentNotFound):
		return sharecode.ErrDocumentNotFound.Error()
	}
	return "not found"
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// dateRange parses optional from/to query parameters in YYYY-MM-DD form.
func dateRange(c echo.Context) (from, to time.Time, err error) {
	if s := c.QueryParam("from"); s != "" {
		if from, err = time.Parse(dateLayout, s); err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
	}
	if s := c.QueryParam("to"); s != "" {
		if to, err = time.Parse(dateLayout, s); err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to is before from")
	}
	return from, to, nil
}
