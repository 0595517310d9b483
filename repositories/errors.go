package repositories

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// UniqueViolation reports if err comes from a unique key rejecting a write, along with the
// name of the constraint when the server sent it.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgxErr *pgconn.PgError
	if !errors.As(err, &pgxErr) || pgxErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}
	return pgxErr.ConstraintName, true
}
