package restclient

import (
	"errors"
	"fmt"
	"net/http"

	dom "example.com/user-admin/internal/domain/user"
)

// RequestFailedError reports a store call that did not succeed. Status is zero
// when no response arrived at all.
type RequestFailedError struct {
	Method string
	Path   string
	Status int
	Reason string
	Err    error
}

func (e *RequestFailedError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s %s failed: %s: %v", e.Method, e.Path, e.Reason, e.Err)
	case e.Status == 0:
		return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Reason)
	}
	return fmt.Sprintf("%s %s failed (%d): %s", e.Method, e.Path, e.Status, e.Reason)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Is matches ErrRequestFailed for every failure and the domain error a status maps to.
func (e *RequestFailedError) Is(target error) bool {
	switch target {
	case dom.ErrRequestFailed:
		return true
	case dom.ErrUserNotFound:
		return e.Status == http.StatusNotFound
	case dom.ErrEmailAlreadyUsed:
		return e.Status == http.StatusConflict
	case dom.ErrInvalidRole:
		return e.Status == http.StatusUnprocessableEntity
	case dom.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.Status
	}
	return 0
}
