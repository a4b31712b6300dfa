package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// ValidationError is a user-facing input error. It matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// ForbiddenError is an authorization failure with a reason. It matches ErrForbidden.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func forbidden(msg string) error { return &ForbiddenError{Msg: msg} }

// storeErr translates repository errors into the service sentinels.
// A malformed id cannot match any row, so it reads as not found.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), utils.IsPGInvalidText(err):
		return ErrNotFound
	case utils.IsPGUniqueViolation(err):
		return ErrConflict
	case utils.IsPGForeignKeyViolation(err):
		return invalid("referenced record does not exist")
	}
	return err
}
