package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// ShareCodeRepo stores share_codes and their share_code_index rows.  Every
// write that touches both tables runs in one transaction.
type ShareCodeRepo struct {
	db *sql.DB
}

func NewShareCodeRepo(db *sql.DB) *ShareCodeRepo { return &ShareCodeRepo{db: db} }

const shareCodeCols = `s.id, s.owner_id, s.code_name, s.description, s.code_hash, s.categories,
	s.created_at, s.expires_at, s.is_active, s.access_count`

func scanShareCode(row rowScanner) (model.ShareCode, error) {
	var (
		sc   model.ShareCode
		cats []byte
	)
	err := row.Scan(&sc.ID, &sc.OwnerID, &sc.CodeName, &sc.Description, &sc.CodeHash, &cats,
		&sc.CreatedAt, &sc.ExpiresAt, &sc.IsActive, &sc.AccessCount)
	if err != nil {
		return model.ShareCode{}, err
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &sc.Categories); err != nil {
			return model.ShareCode{}, err
		}
	}
	return sc, nil
}

// Create inserts the code and its index entry together.
func (r *ShareCodeRepo) Create(ctx context.Context, sc model.ShareCode, lookupHash string) error {
	cats, err := json.Marshal(sc.Categories)
	if err != nil {
		return err
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO share_codes (id, owner_id, code_name, description, code_hash, categories, created_at, expires_at, is_active, access_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.ID, sc.OwnerID, sc.CodeName, sc.Description, sc.CodeHash, cats,
			sc.CreatedAt, sc.ExpiresAt, sc.IsActive, sc.AccessCount); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO share_code_index (lookup_hash, owner_id, share_code_id) VALUES (?, ?, ?)`,
			lookupHash, sc.OwnerID, sc.ID)
		return err
	})
}

// ActiveLookupExists reports whether an active, unexpired code is indexed
// under lookupHash.
func (r *ShareCodeRepo) ActiveLookupExists(ctx context.Context, lookupHash string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM share_code_index i
			JOIN share_codes s ON s.id = i.share_code_id
			WHERE i.lookup_hash = ? AND s.is_active = 1 AND s.expires_at >= ?)`,
		lookupHash, now).Scan(&exists)
	return exists, err
}

// FindByLookupHash returns every code indexed under lookupHash regardless
// of state; the caller decides which are usable.
func (r *ShareCodeRepo) FindByLookupHash(ctx context.Context, lookupHash string) ([]model.ShareCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shareCodeCols+`
		 FROM share_code_index i
		 JOIN share_codes s ON s.id = i.share_code_id
		 WHERE i.lookup_hash = ?`, lookupHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ShareCode
	for rows.Next() {
		sc, err := scanShareCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// IncrementAccess bumps access_count atomically in the database.
func (r *ShareCodeRepo) IncrementAccess(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE share_codes SET access_count = access_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ShareCodeRepo) Get(ctx context.Context, id string) (model.ShareCode, error) {
	sc, err := scanShareCode(r.db.QueryRowContext(ctx,
		`SELECT `+shareCodeCols+` FROM share_codes s WHERE s.id = ?`, id))
	return sc, notFound(err)
}

// ListByOwner returns the owner's codes, newest first.
func (r *ShareCodeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.ShareCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shareCodeCols+` FROM share_codes s WHERE s.owner_id = ? ORDER BY s.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ShareCode{}
	for rows.Next() {
		sc, err := scanShareCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Update rewrites the owner-editable columns.  The hash, expiry and state
// are never touched here.
func (r *ShareCodeRepo) Update(ctx context.Context, sc model.ShareCode) error {
	cats, err := json.Marshal(sc.Categories)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE share_codes SET code_name = ?, description = ?, categories = ? WHERE id = ? AND owner_id = ?`,
		sc.CodeName, sc.Description, cats, sc.ID, sc.OwnerID)
	return err
}

// lockOwned locks the share_codes row and checks ownership.
func lockOwned(ctx context.Context, tx *sql.Tx, ownerID uint64, id string) error {
	var dbOwner uint64
	if err := tx.QueryRowContext(ctx,
		`SELECT owner_id FROM share_codes WHERE id = ? FOR UPDATE`, id).Scan(&dbOwner); err != nil {
		return notFound(err)
	}
	if dbOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

// Deactivate marks the code inactive and removes its index entries.
func (r *ShareCodeRepo) Deactivate(ctx context.Context, ownerID uint64, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwned(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE share_codes SET is_active = 0 WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM share_code_index WHERE share_code_id = ?`, id)
		return err
	})
}

// Delete removes the index entries and then the code.  Access logs are
// kept.
func (r *ShareCodeRepo) Delete(ctx context.Context, ownerID uint64, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwned(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM share_code_index WHERE share_code_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM share_codes WHERE id = ?`, id)
		return err
	})
}
