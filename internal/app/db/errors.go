package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"typerace/internal/pkg/errs"
)

const pgUniqueViolation = "23505"

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// notFound turns pgx.ErrNoRows into the given coded error and passes other errors through.
func notFound(err error, code int) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewError(code)
	}
	return err
}
