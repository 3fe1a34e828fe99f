package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

var ErrEmailExists = errors.New("email already exists")

// UserRepo stores vault owners.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with an already hashed password and returns its id.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		normalizeEmail(email), passwordHash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userCols = "id,email,password_hash,role,is_active,created_at,updated_at"

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
