package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// DocumentRepo stores document metadata and its version history.  File
// contents live in object storage under DocumentVersion.StorageKey.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentCols = `id, owner_id, category, file_name, file_size, current_version, created_at, updated_at`

func scanDocument(row rowScanner) (model.Document, error) {
	var d model.Document
	err := row.Scan(&d.ID, &d.OwnerID, &d.Category, &d.FileName, &d.FileSize, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Upsert registers a file.  A new (owner, category, file name) creates the
// document at version 1; an existing one gets the next version.  newID and
// keyFor supply the id of a fresh document and the storage key of the
// version being added.
func (r *DocumentRepo) Upsert(ctx context.Context, ownerID uint64, category, fileName string, size int64,
	newID string, keyFor func(docID string, version int) string, now time.Time) (model.Document, model.DocumentVersion, error) {
	var (
		doc model.Document
		ver model.DocumentVersion
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		d, err := scanDocument(tx.QueryRowContext(ctx,
			`SELECT `+documentCols+` FROM documents WHERE owner_id = ? AND category = ? AND file_name = ? FOR UPDATE`,
			ownerID, category, fileName))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			d = model.Document{ID: newID, OwnerID: ownerID, Category: category, FileName: fileName,
				FileSize: size, Version: 1, CreatedAt: now, UpdatedAt: now}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO documents (`+documentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				d.ID, d.OwnerID, d.Category, d.FileName, d.FileSize, d.Version, d.CreatedAt, d.UpdatedAt); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			d.Version++
			d.FileSize = size
			d.UpdatedAt = now
			if _, err := tx.ExecContext(ctx,
				`UPDATE documents SET current_version = ?, file_size = ?, updated_at = ? WHERE id = ?`,
				d.Version, d.FileSize, d.UpdatedAt, d.ID); err != nil {
				return err
			}
		}
		v := model.DocumentVersion{DocumentID: d.ID, Version: d.Version, StorageKey: keyFor(d.ID, d.Version),
			FileSize: size, CreatedAt: now}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_versions (document_id, version, storage_key, file_size, created_at) VALUES (?, ?, ?, ?, ?)`,
			v.DocumentID, v.Version, v.StorageKey, v.FileSize, v.CreatedAt); err != nil {
			return err
		}
		doc, ver = d, v
		return nil
	})
	return doc, ver, err
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, `SELECT `+documentCols+` FROM documents WHERE id = ?`, id))
	return d, notFound(err)
}

// ListByOwner returns the owner's documents ordered by category then name.
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Document, error) {
	return r.list(ctx, `SELECT `+documentCols+` FROM documents WHERE owner_id = ? ORDER BY category, file_name`, ownerID)
}

// ListByOwnerAndCategories restricts ListByOwner to the given categories.
func (r *DocumentRepo) ListByOwnerAndCategories(ctx context.Context, ownerID uint64, categories []string) ([]model.Document, error) {
	if len(categories) == 0 {
		return []model.Document{}, nil
	}
	args := make([]any, 0, len(categories)+1)
	args = append(args, ownerID)
	for _, c := range categories {
		args = append(args, c)
	}
	q := `SELECT ` + documentCols + ` FROM documents WHERE owner_id = ? AND category IN (?` +
		strings.Repeat(", ?", len(categories)-1) + `) ORDER BY category, file_name`
	return r.list(ctx, q, args...)
}

func (r *DocumentRepo) list(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestVersion returns the current version row of a document.
func (r *DocumentRepo) LatestVersion(ctx context.Context, documentID string) (model.DocumentVersion, error) {
	var v model.DocumentVersion
	err := r.db.QueryRowContext(ctx,
		`SELECT v.document_id, v.version, v.storage_key, v.file_size, v.created_at
		 FROM document_versions v
		 JOIN documents d ON d.id = v.document_id AND d.current_version = v.version
		 WHERE v.document_id = ?`, documentID).
		Scan(&v.DocumentID, &v.Version, &v.StorageKey, &v.FileSize, &v.CreatedAt)
	return v, notFound(err)
}
