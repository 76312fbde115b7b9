// Package apperrors defines the domain failure taxonomy shared by services
// and controllers. Services return these sentinels (possibly wrapped) and the
// HTTP layer maps them to status codes with StatusCode.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict is the base for the three uniqueness violations; each axis
	// gets its own wrapper so callers can tell them apart.
	ErrConflict         = errors.New("already exists")
	ErrMailConflict     = fmt.Errorf("mail %w", ErrConflict)
	ErrUsernameConflict = fmt.Errorf("username %w", ErrConflict)
	ErrPhoneConflict    = fmt.Errorf("phone number %w", ErrConflict)

	ErrInvalidState     = errors.New("operation not allowed in current cargo situation")
	ErrInvalidCode      = errors.New("verification code is incorrect")
	ErrExpired          = errors.New("verification code has expired")
	ErrNotVerified      = errors.New("account has not been verified")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrForbidden        = errors.New("insufficient role")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// StatusCode maps a domain error to its HTTP status. Unknown errors are
// treated as internal.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrNotVerified),
		errors.Is(err, ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
