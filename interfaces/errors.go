package interfaces

import (
	"errors"
	"fmt"
)

// FetchError is returned when an upstream market-data call fails or rejects the request
type FetchError struct {
	Op     string // "expirations", "chain", "price", "history"
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s for %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(op, symbol string, err error) *FetchError {
	return &FetchError{Op: op, Symbol: symbol, Err: err}
}

// EmptySelectionError is returned when there are no contracts to choose a default from
type EmptySelectionError struct{}

func (e *EmptySelectionError) Error() string {
	return "no contracts to select from"
}

// NoDataError is returned when a historical series has no rows
type NoDataError struct {
	Symbol string
	Period HistoricalPeriod
}

func (e *NoDataError) Error() string {
	if e.Period == "" {
		return fmt.Sprintf("no price data for %s", e.Symbol)
	}
	return fmt.Sprintf("no price data for %s over %s", e.Symbol, e.Period)
}

// ValidationError describes a rejected user input value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IsFetchError reports whether err wraps a FetchError
func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsNoData reports whether err wraps a NoDataError
func IsNoData(err error) bool {
	var target *NoDataError
	return errors.As(err, &target)
}

// IsEmptySelection reports whether err wraps an EmptySelectionError
func IsEmptySelection(err error) bool {
	var target *EmptySelectionError
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
