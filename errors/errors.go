// Package errors combines multiple errors into one
package errors

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Errors collects errors from independent operations, like rejected records or invalid settings, into a single error
type Errors []error

// ErrIf appends an error with failureMessage if the condition is true
// Returns the condition to allow for further conditional checks
func (e *Errors) ErrIf(condition bool, failureMessage string, formatArgs ...interface{}) bool {
	if condition {
		*e = append(*e, errors.Errorf(failureMessage, formatArgs...))
	}
	return condition
}

// AddErr appends an error if it is not nil. Nested Errors are flattened.
func (e *Errors) AddErr(err error) bool {
	if err == nil {
		return true
	}
	if errs, ok := err.(Errors); ok {
		*e = append(*e, errs...)
	} else {
		*e = append(*e, err)
	}
	return false
}

// ErrOrNil returns nil if e is empty, the only error if there is one, or e otherwise
func (e Errors) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	default:
		return e
	}
}

// Errors returns each error. zap logs them individually under "errorCauses".
func (e Errors) Errors() []error {
	return append([]error(nil), e...)
}

func (e Errors) Error() string {
	var buf strings.Builder
	for i, err := range e {
		if i != 0 {
			buf.WriteRune('\n')
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

type errorJSON struct {
	Description string
	Cause       string `json:",omitempty"`
}

// MarshalJSON implements json.Marshaler
// Errors with their own JSON encoding are used as-is. Otherwise each error is described by its message and, if it wraps another error, its root cause.
func (e Errors) MarshalJSON() ([]byte, error) {
	errs := make([]interface{}, 0, len(e))
	for _, err := range e {
		if marshaler, ok := err.(json.Marshaler); ok {
			errs = append(errs, marshaler)
			continue
		}
		desc := errorJSON{Description: err.Error()}
		if cause := errors.Cause(err); cause != err {
			desc.Cause = cause.Error()
		}
		errs = append(errs, desc)
	}
	return json.Marshal(errs)
}
