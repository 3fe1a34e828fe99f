package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

func newShareCodes() (*ShareCodeHandler, *fakeCodes, *fakeLogs) {
	now := time.Now().UTC()
	codes := &fakeCodes{codes: map[string]model.ShareCode{
		"sc-1": {ID: "sc-1", OwnerID: 7, CodeName: "Bank", Categories: []string{"tax"}, CreatedAt: now,
			ExpiresAt: now.Add(time.Hour), IsActive: true, AccessCount: 2, CodeHash: "secret-hash"},
		"sc-2": {ID: "sc-2", OwnerID: 8, CodeName: "Other", Categories: []string{"kyc"}, CreatedAt: now,
			ExpiresAt: now.Add(-time.Hour), IsActive: true},
	}}
	logs := &fakeLogs{logs: []model.AccessLog{
		{ShareCodeID: "sc-1", DocumentID: "d1", Action: model.AccessView, IP: "1.2.3.4", AccessedAt: now},
		{ShareCodeID: "sc-2", DocumentID: "d9", Action: model.AccessDownload, AccessedAt: now},
	}}
	return NewShareCodeHandler(codes, logs), codes, logs
}

func TestShareCode_CreateReturnsSecretOnce(t *testing.T) {
	h, codes, _ := newShareCodes()
	rec, err := call(h.Create, http.MethodPost, "/v1/share-codes",
		`{"code_name":"Loan","categories":["tax","bank"],"description":"for the bank"}`, 7)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ABCDEFGHJKMN", out["code"])
	assert.NotContains(t, rec.Body.String(), "code_hash")
	assert.Equal(t, uint64(7), codes.created.OwnerID)
	assert.Equal(t, []string{"tax", "bank"}, codes.created.Categories)

	rec, err = call(h.List, http.MethodGet, "/v1/share-codes", "", 7)
	require.NoError(t, err)
	assert.NotContains(t, rec.Body.String(), `"code":`)
}

func TestShareCode_CreateErrors(t *testing.T) {
	cases := map[error]int{
		sharecode.ErrNoCategories:  http.StatusBadRequest,
		sharecode.ErrInvalidSecret: http.StatusBadRequest,
		sharecode.ErrNameRequired:  http.StatusBadRequest,
		sharecode.ErrSecretInUse:   http.StatusConflict,
	}
	for e, status := range cases {
		h, codes, _ := newShareCodes()
		codes.createErr = e
		rec, err := call(h.Create, http.MethodPost, "/v1/share-codes", `{"code_name":"x"}`, 7)
		require.NoError(t, err)
		assert.Equal(t, status, rec.Code, e.Error())
	}

	h, codes, _ := newShareCodes()
	codes.createErr = errBoom
	_, err := call(h.Create, http.MethodPost, "/v1/share-codes", `{"code_name":"x"}`, 7)
	assert.ErrorIs(t, err, errBoom)
}

func TestShareCode_OwnershipEnforced(t *testing.T) {
	h, _, _ := newShareCodes()

	rec, err := call(h.Get, http.MethodGet, "/v1/share-codes/sc-2", "", 7, "id", "sc-2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, err = call(h.Get, http.MethodGet, "/v1/share-codes/nope", "", 7, "id", "nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, err = call(h.Revoke, http.MethodDelete, "/v1/share-codes/sc-2", "", 7, "id", "sc-2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, err = call(h.AccessLogs, http.MethodGet, "/v1/share-codes/sc-2/access-logs", "", 7, "id", "sc-2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShareCode_ListShowsExpiry(t *testing.T) {
	h, _, _ := newShareCodes()
	rec, err := call(h.List, http.MethodGet, "/v1/share-codes", "", 8)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []shareCodeResp `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Expired)
	assert.True(t, out.Items[0].IsActive)
}

func TestShareCode_UpdateDeactivateRevoke(t *testing.T) {
	h, codes, _ := newShareCodes()

	rec, err := call(h.Update, http.MethodPatch, "/v1/share-codes/sc-1", `{}`, 7, "id", "sc-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, err = call(h.Update, http.MethodPatch, "/v1/share-codes/sc-1", `{"code_name":"Renamed","categories":["gst"]}`, 7, "id", "sc-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", codes.codes["sc-1"].CodeName)
	assert.Equal(t, []string{"gst"}, codes.codes["sc-1"].Categories)

	rec, err = call(h.Deactivate, http.MethodPost, "/v1/share-codes/sc-1/deactivate", "", 7, "id", "sc-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, codes.codes["sc-1"].IsActive)

	rec, err = call(h.Revoke, http.MethodDelete, "/v1/share-codes/sc-1", "", 7, "id", "sc-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"sc-1"}, codes.revoked)
}

func TestShareCode_RevokeFailureIsServerError(t *testing.T) {
	h, codes, _ := newShareCodes()
	codes.revokeErr = fmt.Errorf("revoke share code: %w", errBoom)
	_, err := call(h.Revoke, http.MethodDelete, "/v1/share-codes/sc-1", "", 7, "id", "sc-1")
	assert.ErrorIs(t, err, errBoom)
}

func TestShareCode_AccessLogs(t *testing.T) {
	h, _, _ := newShareCodes()
	rec, err := call(h.AccessLogs, http.MethodGet, "/v1/share-codes/sc-1/access-logs", "", 7, "id", "sc-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []accessLogResp `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "d1", out.Items[0].DocumentID)
	assert.Equal(t, "view", out.Items[0].Action)
}
