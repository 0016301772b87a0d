package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// now is the gateway clock.  DATETIME(6) stores microseconds, so the value
// is truncated to match what a later read returns.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func newID() string { return uuid.NewString() }

// assignments accumulates the SET clause of a sparse UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

func (a *assignments) empty() bool { return len(a.cols) == 0 }

// setPtr adds col only when the patch supplied a value.
func setPtr[T any](a *assignments, col string, v *T) {
	if v != nil {
		a.set(col, *v)
	}
}

// updateByID applies a in one statement.  An empty patch, or an update that
// changed nothing, falls back to an existence check so that unknown ids
// still report ErrNotFound.
func updateByID(ctx context.Context, db dbtx, table, id string, a assignments) error {
	if a.empty() {
		return exists(ctx, db, table, id)
	}
	q := "UPDATE " + table + " SET " + strings.Join(a.cols, ", ") + " WHERE id = ?"
	res, err := db.ExecContext(ctx, q, append(a.args, id)...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exists(ctx, db, table, id)
	}
	return nil
}

func exists(ctx context.Context, db dbtx, table, id string) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	return translate(err)
}

// deleteByID hard-deletes one row.
func deleteByID(ctx context.Context, db dbtx, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
