// Package repository is the persistence gateway.  Each repo wraps the
// shared *sql.DB, owns the SQL for one entity and reports failures with the
// sentinels below so that higher layers never inspect driver errors.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matches the requested id.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness
// constraint, such as a second vinyl slot at the same row and column.
// Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrReference is returned when a write points at a parent row that does
// not exist (an unknown floor plan id, for example).
var ErrReference = errors.New("referenced record does not exist")

// ErrOutOfRange is returned when a value does not fit its column.
var ErrOutOfRange = errors.New("value out of range")

// MySQL server error numbers the gateway classifies.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
	errOutOfRange      = 1264
	errDataTooLong     = 1406
)

// translate maps driver errors onto the package sentinels, keeping the
// server message for the log.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return fmt.Errorf("%w: %s", ErrConflict, me.Message)
		case errNoReferencedRow:
			return fmt.Errorf("%w: %s", ErrReference, me.Message)
		case errOutOfRange, errDataTooLong:
			return fmt.Errorf("%w: %s", ErrOutOfRange, me.Message)
		}
	}
	return err
}
