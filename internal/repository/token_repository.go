package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens for vault owners.  Only the SHA-256 of
// the raw token is stored, the same way share codes keep only hashes.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owner of a live token.  Unknown, revoked and
// expired tokens are indistinguishable: all yield ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`,
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	switch {
	case err != nil:
		return 0, notFound(err)
	case revokedAt.Valid, now.After(expiresAt):
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByHash is used on rotation and single-session logout.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, `token_hash = ?`, tokenHash)
}

// RevokeAllForUser ends every session of the user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.revoke(ctx, `user_id = ?`, userID)
}

func (r *TokenRepo) revoke(ctx context.Context, where string, arg any) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE `+where+` AND revoked_at IS NULL`, arg)
	return err
}
