package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeCapacity     ErrorCode = "CAPACITY"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
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

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "Task not found")
	ErrUserNotFound     = NewError(ErrCodeNotFound, "User not found")
	ErrProjectNotFound  = NewError(ErrCodeNotFound, "Project not found")
	ErrCommentNotFound  = NewError(ErrCodeNotFound, "Comment not found")
	ErrAssigneeNotFound = NewError(ErrCodeNotFound, "Assignee not found")
	ErrInvalidStatus    = NewError(ErrCodeInvalid, "Invalid status")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrUserConflict     = NewError(ErrCodeConflict, "Username or email already exists")
)

// ErrAssigneeAtCapacity is returned on create when the target assignee already
// holds the maximum number of active tasks. Updates never return it; they
// soft-degrade instead.
func ErrAssigneeAtCapacity(max int) *Error {
	return NewError(ErrCodeCapacity,
		fmt.Sprintf("User already has the maximum allowed tasks (%d)", max))
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
