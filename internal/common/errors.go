// Package common defines shared constants and sentinel errors used across
// client and server layers of SmartQ. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("invalid credentials")
	ErrorAlreadyExists   = errors.New("account already exists")
	ErrorValidation      = errors.New("validation error")
	ErrorTooManyAttempts = errors.New("too many attempts")

	// ErrConfiguration marks a fatal setup problem (missing secret, bad lifetime).
	// The process must not serve auth traffic when it is returned.
	ErrConfiguration = errors.New("configuration error")

	// Token errors. Every kind wraps ErrInvalidToken.
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrTokenMalformed       = fmt.Errorf("%w: malformed token", ErrInvalidToken)
	ErrTokenSignature       = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrUnsupportedAlgorithm = fmt.Errorf("%w: unsupported signing algorithm", ErrInvalidToken)
)

// ConflictError reports which unique account field is already taken.
// It unwraps to ErrorAlreadyExists so transport code never needs the field.
type ConflictError struct {
	Field string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return ErrorAlreadyExists.Error()
	}
	return fmt.Sprintf("%v: %s", ErrorAlreadyExists, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrorAlreadyExists }
