package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingField is the cause of a RecordError for an absent required field
	ErrMissingField = errors.New("Missing required field")
	// ErrInvalidDate is the cause of a RecordError for an unparsable date
	ErrInvalidDate = errors.New("Invalid date")
	// ErrInvalidAmount is the cause of a RecordError for an amount that is not a decimal number
	ErrInvalidAmount = errors.New("Invalid amount")
)

// RecordError describes a malformed record. Use errors.Cause to compare against ErrMissingField, ErrInvalidDate, or ErrInvalidAmount.
type RecordError struct {
	Field string
	Value string
	cause error
}

// NewRecordError returns a RecordError for field, or nil if cause is nil
func NewRecordError(field, value string, cause error) error {
	if cause == nil {
		return nil
	}
	return RecordError{Field: field, Value: value, cause: cause}
}

func (e RecordError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("Malformed record field '%s': %s", e.Field, e.cause)
	}
	return fmt.Sprintf("Malformed record field '%s' with value '%s': %s", e.Field, e.Value, e.cause)
}

// Cause implements the github.com/pkg/errors causer interface
func (e RecordError) Cause() error {
	return e.cause
}

// IsAmountParseError returns true if err was caused by an amount that could not be parsed
func IsAmountParseError(err error) bool {
	return errors.Cause(err) == ErrInvalidAmount
}
