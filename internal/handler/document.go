package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/storage"
)

// DocumentStore is implemented by repository.DocumentRepo.
type DocumentStore interface {
	Upsert(ctx context.Context, ownerID uint64, category, fileName string, size int64,
		newID string, keyFor func(docID string, version int) string, now time.Time) (model.Document, model.DocumentVersion, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Document, error)
}

// DocumentHandler lets owners register uploads into their vault.  The file
// itself goes straight to object storage through the returned URL.
type DocumentHandler struct {
	Docs DocumentStore
	URLs URLSigner
}

func NewDocumentHandler(docs DocumentStore, urls URLSigner) *DocumentHandler {
	return &DocumentHandler{Docs: docs, URLs: urls}
}

type registerDocumentReq struct {
	Category string `json:"category"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// Register records a document version and returns the upload URL.  The
// same category and file name adds a version to the existing document.
func (h *DocumentHandler) Register(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req registerDocumentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Category = strings.TrimSpace(req.Category)
	req.FileName = strings.TrimSpace(req.FileName)
	if req.Category == "" || req.FileName == "" {
		return badRequest(c, "category and file_name required")
	}
	if req.FileSize < 0 {
		return badRequest(c, "file_size must not be negative")
	}

	ctx := c.Request().Context()
	keyFor := func(docID string, version int) string { return storage.ObjectKey(uid, docID, version) }
	doc, ver, err := h.Docs.Upsert(ctx, uid, req.Category, req.FileName, req.FileSize, uuid.NewString(), keyFor, time.Now().UTC())
	if err != nil {
		return respondError(c, err)
	}
	url, exp, err := h.URLs.PutURL(ctx, ver.StorageKey)
	if err != nil {
		return err
	}
	status := http.StatusCreated
	if ver.Version > 1 {
		status = http.StatusOK
	}
	return c.JSON(status, echo.Map{
		"document":   toDocumentResp(doc),
		"upload_url": url,
		"expires":    exp,
	})
}

func (h *DocumentHandler) List(c echo.Context) error {
	uid, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	docs, err := h.Docs.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	out := make([]documentResp, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
