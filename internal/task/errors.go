package task

import (
	"errors"
	"fmt"
)

// ErrorCode classifies store failures for the front ends.
type ErrorCode string

const (
	ErrCodeInvalid  ErrorCode = "INVALID"
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeCorrupt  ErrorCode = "CORRUPT"
	ErrCodeInternal ErrorCode = "INTERNAL"
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Error is returned by Store operations.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrBlankTitle = newError(ErrCodeInvalid, "title cannot be empty")
	ErrNotFound   = newError(ErrCodeNotFound, "task not found")
)

func notFound(id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("task %q not found", id), Err: ErrNotFound}
}

// HasCode reports whether err carries a store error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

func IsValidation(err error) bool { return HasCode(err, ErrCodeInvalid) }
func IsNotFound(err error) bool   { return HasCode(err, ErrCodeNotFound) }
func IsCorrupt(err error) bool    { return HasCode(err, ErrCodeCorrupt) }
func IsConflict(err error) bool   { return HasCode(err, ErrCodeConflict) }
