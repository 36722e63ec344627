package user

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email is already in use")
	ErrInvalidRole      = errors.New("invalid role, allowed values: 'Admin' or 'User'")
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrRequestFailed    = errors.New("request failed")
	ErrUnauthorized     = errors.New("unauthorized")
)

// ErrDuplicateEmail is the client-side name for a failed uniqueness pre-check.
var ErrDuplicateEmail = ErrEmailAlreadyUsed
