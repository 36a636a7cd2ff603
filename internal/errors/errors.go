// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrAccountNotFound  = errors.New("account not found")
	ErrPositionNotFound = errors.New("position not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotAnOption      = errors.New("instrument is not an option")
	ErrDatabaseError    = errors.New("database error")
)

// QuoteError represents a failure to resolve a quote for a symbol.
type QuoteError struct {
	Symbol string
	Err    error
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote error [%s]: %v", e.Symbol, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(symbol string, err error) *QuoteError {
	return &QuoteError{Symbol: symbol, Err: err}
}

// OrderError represents an error related to order operations.
type OrderError struct {
	OrderID string
	Symbol  string
	Reason  string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order error [%s] %s: %s: %v", e.OrderID, e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("order error [%s] %s: %s", e.OrderID, e.Symbol, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError.
func NewOrderError(orderID, symbol, reason string, err error) *OrderError {
	return &OrderError{
		OrderID: orderID,
		Symbol:  symbol,
		Reason:  reason,
		Err:     err,
	}
}

// ValidationError represents a validation error. Validation failures are
// surfaced immediately and never retried.
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

// ConversionError represents a schema/persistence mapping failure, e.g. a
// required field missing when building a record. It indicates a programming
// error in the caller, not a transient condition.
type ConversionError struct {
	Entity string
	Field  string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversion error [%s]: missing or invalid %s: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("conversion error [%s]: missing or invalid %s", e.Entity, e.Field)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(entity, field string, err error) *ConversionError {
	return &ConversionError{Entity: entity, Field: field, Err: err}
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
