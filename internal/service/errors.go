package service

import (
	"errors"
	"fmt"

	"portfolio/internal/repository"
)

// Domain errors; handlers map them to HTTP status codes.
var (
	ErrNotFound           = repository.ErrNotFound
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// invalidf wraps ErrInvalidInput with a human-readable detail.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
