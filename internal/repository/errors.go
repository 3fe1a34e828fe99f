// Package repository holds the MySQL-backed stores and the sentinel errors
// they share.  Handlers map ErrNotFound to 404, ErrForbidden to 403 and
// ErrConflict to 409.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as a duplicate key.
var ErrConflict = errors.New("conflict")

// notFound converts sql.ErrNoRows to ErrNotFound and passes anything else
// through unchanged.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isDuplicate reports a MySQL 1062 duplicate-entry error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
