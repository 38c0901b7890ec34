package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned by reads when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrNoRowsAffected is returned by writes that matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrDuplicate is returned when a unique constraint rejects the write.
	ErrDuplicate = errors.New("duplicate")
	// ErrShareLimit is returned by AddShare when the list is already at the limit.
	ErrShareLimit = errors.New("share limit reached")
)

// isPGUniqueViolation reports whether error is PostgreSQL unique constraint violation (code 23505).
func isPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}
