package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrInvalid  = errors.New("record violates a constraint")
)

// ConflictError names the unique field that was violated.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Postgres error codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// uniqueFields maps unique constraint names to the input field they guard.
var uniqueFields = map[string]string{
	"users_username_key":    "username",
	"idx_users_email_lower": "email",
}

// mapError translates driver errors into the repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			if field, ok := uniqueFields[pqErr.Constraint]; ok {
				return &ConflictError{Field: field}
			}
			return ErrConflict
		case foreignKeyViolation:
			return ErrNotFound
		case checkViolation:
			return ErrInvalid
		}
	}
	return err
}
