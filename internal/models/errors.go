package models

import (
	"errors"
	"fmt"
)

// Sentinel errors the repositories wrap
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("operation conflicts with current state")
)

// AppError codes, also used as the code field of error responses
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is an error with a stable code and a message safe to show
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrNotFoundWithMsg creates an error matching ErrNotFound
func ErrNotFoundWithMsg(message string) error {
	return &AppError{Code: CodeNotFound, Message: message, Err: ErrNotFound}
}

// ErrAlreadyExistsWithMsg creates an error matching ErrAlreadyExists
func ErrAlreadyExistsWithMsg(message string) error {
	return &AppError{Code: CodeConflict, Message: message, Err: ErrAlreadyExists}
}
