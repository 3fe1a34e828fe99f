package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithbooks/zenithbooks/internal/config"
	"github.com/zenithbooks/zenithbooks/internal/utils"
)

func newAuth() (*AuthHandler, *fakeUsers, *fakeTokens) {
	users, tokens := newFakeUsers(), newFakeTokens()
	cfg := config.Config{JWTSecret: "auth-secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}
	return NewAuthHandler(cfg, users, tokens), users, tokens
}

func decodeAuth(t *testing.T, body []byte) authResp {
	t.Helper()
	var out authResp
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	h, users, _ := newAuth()

	rec, err := call(h.Register, http.MethodPost, "/v1/auth/register", `{"email":" Owner@Example.com ","password":"longenough"}`, 0)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decodeAuth(t, rec.Body.Bytes())
	assert.Equal(t, "owner@example.com", reg.User.Email)
	assert.Equal(t, "USER", reg.User.Role)
	assert.NotEqual(t, "longenough", users.byEmail["owner@example.com"].PasswordHash)

	claims, err := utils.ParseAccessToken("auth-secret", reg.Access.Token)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	rec, err = call(h.Register, http.MethodPost, "/v1/auth/register", `{"email":"owner@example.com","password":"longenough"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, err = call(h.Login, http.MethodPost, "/v1/auth/login", `{"email":"owner@example.com","password":"wrong-password"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, err = call(h.Login, http.MethodPost, "/v1/auth/login", `{"email":"nobody@example.com","password":"longenough"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, err = call(h.Login, http.MethodPost, "/v1/auth/login", `{"email":"OWNER@example.com","password":"longenough"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_RegisterValidation(t *testing.T) {
	h, _, _ := newAuth()
	for _, body := range []string{`{"email":"","password":"longenough"}`, `{"email":"a@b.c","password":"short"}`, `not json`} {
		rec, err := call(h.Register, http.MethodPost, "/v1/auth/register", body, 0)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestAuth_RefreshRotates(t *testing.T) {
	h, _, tokens := newAuth()
	rec, err := call(h.Register, http.MethodPost, "/v1/auth/register", `{"email":"a@b.c","password":"longenough"}`, 0)
	require.NoError(t, err)
	first := decodeAuth(t, rec.Body.Bytes()).Refresh.Token

	body := `{"refresh_token":"` + first + `"}`
	rec, err = call(h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeAuth(t, rec.Body.Bytes()).Refresh.Token
	assert.NotEqual(t, first, second)
	assert.True(t, tokens.revoked[utils.HashRefreshRaw(first)])

	rec, err = call(h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Logout(t *testing.T) {
	h, _, tokens := newAuth()
	rec, err := call(h.Register, http.MethodPost, "/v1/auth/register", `{"email":"a@b.c","password":"longenough"}`, 0)
	require.NoError(t, err)
	reg := decodeAuth(t, rec.Body.Bytes())

	rec, err = call(h.Logout, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+reg.Refresh.Token+`"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, tokens.revoked[utils.HashRefreshRaw(reg.Refresh.Token)])

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Access.Token)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Logout(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint64{reg.User.ID}, tokens.allFor)

	rec, err = call(h.Logout, http.MethodPost, "/v1/auth/logout", `{}`, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_Me(t *testing.T) {
	h, _, _ := newAuth()
	rec, err := call(h.Register, http.MethodPost, "/v1/auth/register", `{"email":"a@b.c","password":"longenough"}`, 0)
	require.NoError(t, err)
	reg := decodeAuth(t, rec.Body.Bytes())

	rec, err = call(h.Me, http.MethodGet, "/v1/me", "", reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.c"`)

	rec, err = call(h.Me, http.MethodGet, "/v1/me", "", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
