package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed, please login again")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrForbidden            = errors.New("forbidden for role")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	// Token errors
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrNoRefreshToken  = errors.New("no refresh token available")
	ErrRefreshRejected = errors.New("refresh token rejected")
	ErrInvalidRole     = errors.New("invalid role")

	// Store errors
	ErrStoreUnavailable = errors.New("session store unavailable")
	ErrWrongPassphrase  = errors.New("session file could not be decrypted")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// DecodeError reports a response body that is missing a required field or
// carries a field of the wrong shape.
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingField returns a DecodeError for a required field that was absent or empty
func MissingField(field string) *DecodeError {
	return &DecodeError{Field: field, Reason: "required field missing"}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join combines errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
