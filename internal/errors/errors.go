// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors
var (
	ErrUnknownPattern   = errors.New("unknown pattern")
	ErrInvalidSeries    = errors.New("invalid series")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrConnectionFailed = errors.New("connection failed")
	ErrTimeout          = errors.New("operation timed out")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrInputValidation  = errors.New("input validation failed")
)

// PatternError reports a pattern name that is not in the catalog.
type PatternError struct {
	Name      string
	Available []string
}

func (e *PatternError) Error() string {
	if len(e.Available) > 0 {
		return fmt.Sprintf("unknown pattern %q, available: %s", e.Name, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("unknown pattern %q", e.Name)
}

func (e *PatternError) Unwrap() error {
	return ErrUnknownPattern
}

// NewPatternError creates a new PatternError.
func NewPatternError(name string, available []string) *PatternError {
	return &PatternError{
		Name:      name,
		Available: available,
	}
}

// SeriesError reports a malformed price series encountered while
// evaluating a specific pattern.
type SeriesError struct {
	Pattern string
	Index   int
	Reason  string
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("invalid series [%s]: %s at index %d", e.Pattern, e.Reason, e.Index)
}

func (e *SeriesError) Unwrap() error {
	return ErrInvalidSeries
}

// NewSeriesError creates a new SeriesError.
func NewSeriesError(pattern string, index int, reason string) *SeriesError {
	return &SeriesError{
		Pattern: pattern,
		Index:   index,
		Reason:  reason,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents a data-related error.
type DataError struct {
	Source  string
	Symbol  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Source, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Source, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source, symbol, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// NotifyError represents a notification delivery error.
type NotifyError struct {
	Channel string
	Reason  string
	Err     error
}

func (e *NotifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notify error [%s]: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("notify error [%s]: %s", e.Channel, e.Reason)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// NewNotifyError creates a new NotifyError.
func NewNotifyError(channel, reason string, err error) *NotifyError {
	return &NotifyError{
		Channel: channel,
		Reason:  reason,
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
