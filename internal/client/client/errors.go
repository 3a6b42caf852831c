package client

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrAlreadyExists    = errors.New("account already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTooManyAttempts  = errors.New("too many attempts, try again later")
	ErrSessionExpired   = errors.New("session expired, log in again")
	ErrNotAuthenticated = errors.New("not logged in")
)
