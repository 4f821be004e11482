package ledger

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordError(t *testing.T) {
	assert.Nil(t, NewRecordError("Amount", "abc", nil))

	recordErr := NewRecordError("Amount", "abc", ErrInvalidAmount)
	require.Error(t, recordErr)
	assert.Equal(t, "Malformed record field 'Amount' with value 'abc': Invalid amount", recordErr.Error())
	assert.Equal(t, ErrInvalidAmount, errors.Cause(recordErr))
	assert.True(t, IsAmountParseError(recordErr))

	missingErr := NewRecordError("Date", "", ErrMissingField)
	assert.Equal(t, "Malformed record field 'Date': Missing required field", missingErr.Error())
	assert.False(t, IsAmountParseError(missingErr))
}

func TestIsAmountParseErrorWrapped(t *testing.T) {
	err := errors.Wrap(NewRecordError("Amount", "1.2.3", ErrInvalidAmount), "Record #3")
	assert.True(t, IsAmountParseError(err))
	assert.False(t, IsAmountParseError(errors.New("some error")))
}
