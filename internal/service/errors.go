// Package service holds the account and note rules that sit between the HTTP
// handlers and the storage backends.
package service

import (
	"errors"
	"fmt"

	"github.com/hongminglow/campuslearn-be/internal/storage"
)

// Errors returned by services. Callers match them with errors.Is; the wrapped
// text is safe to show to clients.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// fromStore maps storage sentinels onto service errors; anything else is a
// storage failure.
func fromStore(op string, err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, notFoundMsg)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
	}
}
