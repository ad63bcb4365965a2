// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrProgressNotFound means no progress document exists for the account.
	// It is distinct from zero progress: synthesizing a fresh record over
	// real history would clobber it, so callers must handle this explicitly.
	ErrProgressNotFound = errors.New("progress not found")

	ErrCheckInExists     = errors.New("check-in already recorded for this day")
	ErrIncompleteCheckIn = errors.New("check-in incomplete")
	ErrTradeNotFound     = errors.New("trade not found")
	ErrTradeClosed       = errors.New("trade already closed")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrDataNotFound      = errors.New("data not found")
	ErrDatabaseError     = errors.New("database error")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrParseFailed       = errors.New("paste format not recognized")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a persistence-layer error.
type StoreError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s", e.Op, e.Entity)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is classifies every StoreError under the ErrDatabaseError sentinel, so
// callers can match any persistence failure without knowing the operation.
func (e *StoreError) Is(target error) bool {
	return target == ErrDatabaseError
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity string, err error) *StoreError {
	return &StoreError{
		Op:     op,
		Entity: entity,
		Err:    err,
	}
}

// ImportError represents an error while importing pasted or CSV trade data.
type ImportError struct {
	Line    int
	Input   string
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import error line %d: %s: %v", e.Line, e.Message, e.Err)
	}
	return fmt.Sprintf("import error line %d: %s", e.Line, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError.
func NewImportError(line int, input, message string, err error) *ImportError {
	return &ImportError{
		Line:    line,
		Input:   input,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
