// Package repository persists users and expenses in SQLite.
//
// Every query runs under the pool acquire timeout, so a saturated pool fails
// the request instead of blocking it indefinitely. Expense queries are always
// scoped by owner: a row belonging to another user is indistinguishable from
// a missing one.
package repository

import (
	"context"
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no row matches the requested key and owner.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when inserting an email that is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func now() time.Time {
	return time.Now().UTC()
}
