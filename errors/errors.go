package errors

import (
	"errors"
	"fmt"
)

// Is re-exports the standard library matcher so callers of this
// package don't need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrMalformedFrame     = fmt.Errorf("malformed frame")
	ErrUnknownUser        = fmt.Errorf("unknown user")
	ErrInvalidSession     = fmt.Errorf("invalid session")
	ErrNoDialog           = fmt.Errorf("no dialog between users")
	ErrConnClosed         = fmt.Errorf("connection closed")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password too weak")
)
