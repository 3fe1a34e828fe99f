package repository

import (
	"context"
	"database/sql"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// AccessLogRepo appends to and reads access_logs.  Rows are never updated
// or deleted.
type AccessLogRepo struct {
	db *sql.DB
}

func NewAccessLogRepo(db *sql.DB) *AccessLogRepo { return &AccessLogRepo{db: db} }

func (r *AccessLogRepo) Insert(ctx context.Context, e model.AccessLog) error {
	var docID sql.NullString
	if e.DocumentID != "" {
		docID = sql.NullString{String: e.DocumentID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_logs (share_code_id, document_id, action, ip, accessed_at) VALUES (?, ?, ?, ?, ?)`,
		e.ShareCodeID, docID, string(e.Action), e.IP, e.AccessedAt)
	return err
}

// ListByShareCode returns the entries for one code, newest first.
func (r *AccessLogRepo) ListByShareCode(ctx context.Context, shareCodeID string) ([]model.AccessLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, share_code_id, document_id, action, ip, accessed_at
		 FROM access_logs WHERE share_code_id = ? ORDER BY accessed_at DESC, id DESC`, shareCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AccessLog{}
	for rows.Next() {
		var (
			e      model.AccessLog
			docID  sql.NullString
			action string
		)
		if err := rows.Scan(&e.ID, &e.ShareCodeID, &docID, &action, &e.IP, &e.AccessedAt); err != nil {
			return nil, err
		}
		e.DocumentID = docID.String
		e.Action = model.AccessAction(action)
		out = append(out, e)
	}
	return out, rows.Err()
}
