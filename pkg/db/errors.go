package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the repositories branch on.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// sqlState extracts the SQLSTATE and constraint from either driver in use:
// pgx behind gorm and lib/pq behind the goose migrator.
func sqlState(err error) (code, constraint string, ok bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

func matches(err error, state, constraint string, sentinel error, sqliteText string) bool {
	if err == nil {
		return false
	}
	if code, name, ok := sqlState(err); ok {
		return code == state && (constraint == "" || name == constraint)
	}
	if constraint != "" {
		return strings.Contains(err.Error(), constraint)
	}
	// sqlite, used in tests, only reports through the message
	return errors.Is(err, sentinel) || strings.Contains(err.Error(), sqliteText)
}

// IsUniqueViolation reports a unique constraint failure. A non-empty
// constraint narrows the match to that constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return matches(err, pgUniqueViolation, constraint, gorm.ErrDuplicatedKey, "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports a row referencing a parent that is gone.
func IsForeignKeyViolation(err error, constraint string) bool {
	return matches(err, pgForeignKeyViolation, constraint, gorm.ErrForeignKeyViolated, "FOREIGN KEY constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
