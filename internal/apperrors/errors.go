package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientBalance indicates a debit would drive an account balance below zero.
// No partial effect is applied when this is returned.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrAlreadyReversed indicates a reversal was requested for a transaction that is
// already reversed.
var ErrAlreadyReversed = errors.New("transaction already reversed")

// ErrConcurrencyConflict indicates the bounded retries for a conflicting concurrent
// write were exhausted. The caller may retry the whole operation.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrForbidden indicates the authenticated user may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure (storage etc.).
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with a short context message and a status hint.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// ValidationError carries every rule a request violated so the caller can surface
// them all at once instead of one at a time.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Violations, "; ")
}

// Is lets errors.Is(err, ErrValidation) match a ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError from the given violations.
func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}
