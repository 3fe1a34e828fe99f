package model

import "time"

// User represents a subscriber account as stored in the `users` table.
// Handlers define their own response types; this struct has no json tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – USER or ADMIN.
//	IsActive     – whether the account is active.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Roles accepted in access tokens.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
