package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/middleware"
	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
	"github.com/zenithbooks/zenithbooks/internal/utils"
)

// AccessGranter is the grant-holder side of *sharecode.Service.
type AccessGranter interface {
	Validate(ctx context.Context, caller, rawSecret string) (sharecode.Grant, error)
	ListAccessibleDocuments(ctx context.Context, g sharecode.Grant) ([]model.Document, error)
	AccessibleDocument(ctx context.Context, g sharecode.Grant, documentID string) (model.Document, error)
	RecordAccess(ctx context.Context, shareCodeID, documentID string, action model.AccessAction, ip string)
}

// VersionStore is implemented by repository.DocumentRepo.
type VersionStore interface {
	LatestVersion(ctx context.Context, documentID string) (model.DocumentVersion, error)
}

// URLSigner is implemented by *storage.Presigner.
type URLSigner interface {
	PutURL(ctx context.Context, key string) (string, time.Time, error)
	GetURL(ctx context.Context, key, fileName string) (string, time.Time, error)
}

// AccessHandler serves the public share-code routes.  Everything except
// Validate runs behind middleware.GrantAuth.
type AccessHandler struct {
	Secret   string
	GrantTTL time.Duration
	Access   AccessGranter
	Versions VersionStore
	URLs     URLSigner
	now      func() time.Time
}

func NewAccessHandler(secret string, grantTTL time.Duration, access AccessGranter, versions VersionStore, urls URLSigner) *AccessHandler {
	return &AccessHandler{
		Secret:   secret,
		GrantTTL: grantTTL,
		Access:   access,
		Versions: versions,
		URLs:     urls,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type validateReq struct {
	Code string `json:"code"`
}

type documentResp struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDocumentResp(d model.Document) documentResp {
	return documentResp{ID: d.ID, Category: d.Category, FileName: d.FileName, FileSize: d.FileSize,
		Version: d.Version, UpdatedAt: d.UpdatedAt}
}

// Validate exchanges a raw share code for a grant token.  The token never
// outlives the code itself.
func (h *AccessHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return badRequest(c, "code required")
	}
	g, err := h.Access.Validate(c.Request().Context(), c.RealIP(), req.Code)
	if err != nil {
		return respondError(c, err)
	}
	exp := h.now().Add(h.GrantTTL)
	if g.ExpiresAt.Before(exp) {
		exp = g.ExpiresAt
	}
	tok, err := utils.NewGrantToken(h.Secret, g.ShareCodeID, g.OwnerID, g.Categories, exp)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"share_code_id": g.ShareCodeID,
		"owner_id":      g.OwnerID,
		"categories":    g.Categories,
		"expires_at":    g.ExpiresAt,
		"grant": tokenPart{
			Token:   tok.Token,
			Expires: tok.Exp,
		},
	})
}

func (h *AccessHandler) grant(c echo.Context) (sharecode.Grant, error) {
	g, ok := middleware.GrantFrom(c)
	if !ok {
		return sharecode.Grant{}, errUnauthorized
	}
	return g, nil
}

// ListDocuments returns the documents inside the grant's categories.
func (h *AccessHandler) ListDocuments(c echo.Context) error {
	g, err := h.grant(c)
	if err != nil {
		return respondError(c, err)
	}
	docs, err := h.Access.ListAccessibleDocuments(c.Request().Context(), g)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]documentResp, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ViewDocument returns one document's metadata and records a view.
func (h *AccessHandler) ViewDocument(c echo.Context) error {
	g, err := h.grant(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	doc, err := h.Access.AccessibleDocument(ctx, g, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	h.Access.RecordAccess(ctx, g.ShareCodeID, doc.ID, model.AccessView, c.RealIP())
	return c.JSON(http.StatusOK, toDocumentResp(doc))
}

// Download returns a presigned URL for the latest version and records a
// download.
func (h *AccessHandler) Download(c echo.Context) error {
	g, err := h.grant(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	doc, err := h.Access.AccessibleDocument(ctx, g, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	ver, err := h.Versions.LatestVersion(ctx, doc.ID)
	if err != nil {
		return respondError(c, err)
	}
	url, exp, err := h.URLs.GetURL(ctx, ver.StorageKey, doc.FileName)
	if err != nil {
		return err
	}
	h.Access.RecordAccess(ctx, g.ShareCodeID, doc.ID, model.AccessDownload, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{
		"document_id": doc.ID,
		"version":     ver.Version,
		"url":         url,
		"expires":     exp,
	})
}
