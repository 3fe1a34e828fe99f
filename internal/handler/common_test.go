package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithbooks/zenithbooks/internal/repository"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrap: %w", sharecode.ErrNotFoundOrExpired), http.StatusNotFound},
		{sharecode.ErrDocumentNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrConflict, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{repository.ErrForbidden, http.StatusForbidden},
		{sharecode.ErrNoCategories, http.StatusBadRequest},
		{errUnauthorized, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec, err := call(func(c echo.Context) error { return respondError(c, tc.err) }, http.MethodGet, "/", "", 0)
		require.NoError(t, err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}

	_, err := call(func(c echo.Context) error { return respondError(c, errBoom) }, http.MethodGet, "/", "", 0)
	assert.ErrorIs(t, err, errBoom)
}

func TestNotFoundHidesReason(t *testing.T) {
	rec, err := call(func(c echo.Context) error {
		return respondError(c, fmt.Errorf("load: %w", repository.ErrNotFound))
	}, http.MethodGet, "/", "", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec, err := call(Health, http.MethodGet, "/healthz", "", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = call(Ready(pinger{}), http.MethodGet, "/readyz", "", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = call(Ready(pinger{err: errBoom}), http.MethodGet, "/readyz", "", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
