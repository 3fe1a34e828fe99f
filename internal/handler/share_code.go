package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

// ShareCodeManager is the owner side of *sharecode.Service.
type ShareCodeManager interface {
	Create(ctx context.Context, in sharecode.CreateInput) (model.ShareCode, string, error)
	List(ctx context.Context, ownerID uint64) ([]model.ShareCode, error)
	Get(ctx context.Context, ownerID uint64, id string) (model.ShareCode, error)
	Update(ctx context.Context, ownerID uint64, id string, in sharecode.UpdateInput) (model.ShareCode, error)
	Deactivate(ctx context.Context, ownerID uint64, id string) error
	Revoke(ctx context.Context, ownerID uint64, id string) error
}

// AccessLogLister is implemented by repository.AccessLogRepo.
type AccessLogLister interface {
	ListByShareCode(ctx context.Context, shareCodeID string) ([]model.AccessLog, error)
}

type ShareCodeHandler struct {
	Codes ShareCodeManager
	Logs  AccessLogLister
}

func NewShareCodeHandler(codes ShareCodeManager, logs AccessLogLister) *ShareCodeHandler {
	return &ShareCodeHandler{Codes: codes, Logs: logs}
}

type createShareCodeReq struct {
	CodeName    string   `json:"code_name"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Categories  []string `json:"categories"`
}

type updateShareCodeReq struct {
	CodeName    *string  `json:"code_name"`
	Description *string  `json:"description"`
	Categories  []string `json:"categories"`
}

type shareCodeResp struct {
	ID          string    `json:"id"`
	CodeName    string    `json:"code_name"`
	Description string    `json:"description,omitempty"`
	Categories  []string  `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsActive    bool      `json:"is_active"`
	Expired     bool      `json:"expired"`
	AccessCount uint64    `json:"access_count"`
	// Code is only set in the create response.
	Code string `json:"code,omitempty"`
}

type accessLogResp struct {
	DocumentID string    `json:"document_id,omitempty"`
	Action     string    `json:"action"`
	IP         string    `json:"ip,omitempty"`
	AccessedAt time.Time `json:"accessed_at"`
}

func toShareCodeResp(sc model.ShareCode, now time.Time) shareCodeResp {
	return shareCodeResp{
		ID:          sc.ID,
		CodeName:    sc.CodeName,
		Description: sc.Description,
		Categories:  sc.Categories,
		CreatedAt:   sc.CreatedAt,
		ExpiresAt:   sc.ExpiresAt,
		IsActive:    sc.IsActive,
		Expired:     sc.Expired(now),
		AccessCount: sc.AccessCount,
	}
}

// Create issues a new share code.  The raw code appears in this response
// and nowhere else.
func (h *ShareCodeHandler) Create(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createShareCodeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sc, secret, err := h.Codes.Create(c.Request().Context(), sharecode.CreateInput{
		OwnerID:     uid,
		CodeName:    req.CodeName,
		Description: req.Description,
		Secret:      req.Code,
		Categories:  req.Categories,
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := toShareCodeResp(sc, time.Now().UTC())
	resp.Code = secret
	return c.JSON(http.StatusCreated, resp)
}

func (h *ShareCodeHandler) List(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	codes, err := h.Codes.List(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now().UTC()
	out := make([]shareCodeResp, 0, len(codes))
	for _, sc := range codes {
		out = append(out, toShareCodeResp(sc, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ShareCodeHandler) Get(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	sc, err := h.Codes.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShareCodeResp(sc, time.Now().UTC()))
}

func (h *ShareCodeHandler) Update(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateShareCodeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.CodeName == nil && req.Description == nil && req.Categories == nil {
		return badRequest(c, "nothing to update")
	}
	sc, err := h.Codes.Update(c.Request().Context(), uid, c.Param("id"), sharecode.UpdateInput{
		CodeName:    req.CodeName,
		Description: req.Description,
		Categories:  req.Categories,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShareCodeResp(sc, time.Now().UTC()))
}

func (h *ShareCodeHandler) Deactivate(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Codes.Deactivate(c.Request().Context(), uid, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Revoke deletes the code and its index entries.  Access logs are kept.
func (h *ShareCodeHandler) Revoke(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Codes.Revoke(c.Request().Context(), uid, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AccessLogs lists the views and downloads made with one of the caller's
// codes, newest first.
func (h *ShareCodeHandler) AccessLogs(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	sc, err := h.Codes.Get(ctx, uid, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	logs, err := h.Logs.ListByShareCode(ctx, sc.ID)
	if err != nil {
		return err
	}
	out := make([]accessLogResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, accessLogResp{DocumentID: l.DocumentID, Action: string(l.Action), IP: l.IP, AccessedAt: l.AccessedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
