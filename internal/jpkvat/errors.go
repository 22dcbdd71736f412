package jpkvat

import (
	"errors"
	"fmt"
)

// Sentinel errors for field parsing and declaration construction.
var (
	// ErrEmpty is returned when a required value is absent or blank.
	ErrEmpty = errors.New("value is empty")

	// ErrNegativeAmount is returned when a currency amount is below zero.
	ErrNegativeAmount = errors.New("amount is negative")

	// ErrAmountGrouping is returned when the decimal and thousands separators
	// of a text amount cannot be told apart.
	ErrAmountGrouping = errors.New("ambiguous decimal or thousands separators")

	// ErrInvalidTaxID is returned when a NIP fails the digit-count or checksum rules.
	ErrInvalidTaxID = errors.New("invalid tax identifier (NIP)")

	// ErrMissingCompanyName is returned when a declaration has no company name.
	ErrMissingCompanyName = errors.New("company name is required")

	// ErrInvalidVersion is returned for a negative document version flag.
	ErrInvalidVersion = errors.New("document version must not be negative")
)

// FormatError reports a value that cannot be parsed into its semantic type.
type FormatError struct {
	// Type is the semantic type that was expected ("date", "amount", "number").
	Type string

	// Value is the offending raw value.
	Value any

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if errors.Is(e.Err, ErrEmpty) {
		return fmt.Sprintf("%s is empty", e.Type)
	}
	return fmt.Sprintf("cannot read %q as %s: %v", fmt.Sprint(e.Value), e.Type, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(typ string, value any, err error) *FormatError {
	return &FormatError{Type: typ, Value: value, Err: err}
}

// PreconditionViolation is the panic value used when the document builder is
// called with inputs a caller was required to validate first.
type PreconditionViolation struct {
	Reason string
}

// Error implements the error interface.
func (e *PreconditionViolation) Error() string {
	return "jpkvat: precondition violated: " + e.Reason
}

func violate(format string, args ...any) {
	panic(&PreconditionViolation{Reason: fmt.Sprintf(format, args...)})
}

// WriteError wraps a failure of the output sink.
type WriteError struct {
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("jpkvat: write document: %v", e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *WriteError) Unwrap() error {
	return e.Err
}
