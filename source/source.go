// Package source retrieves pages of transaction records
package source

import (
	"context"
	"fmt"

	"github.com/johnstarich/tally/ledger"
)

// Source returns pages of records, starting from page 1
type Source interface {
	Page(ctx context.Context, page int) (Page, error)
}

// Page is one response from a Source. TotalCount is the number of records the source currently declares and may change between pages.
type Page struct {
	TotalCount   int             `json:"totalCount"`
	Page         int             `json:"page"`
	Transactions []ledger.Record `json:"transactions"`
}

// UnavailableError is returned when a page could not be retrieved
type UnavailableError struct {
	Page  int
	cause error
}

// NewUnavailableError returns an UnavailableError for page, or nil if cause is nil
func NewUnavailableError(page int, cause error) error {
	if cause == nil {
		return nil
	}
	return UnavailableError{Page: page, cause: cause}
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("Source unavailable while fetching page #%d: %s", e.Page, e.cause)
}

// Cause implements the github.com/pkg/errors causer interface
func (e UnavailableError) Cause() error {
	return e.cause
}

// IsUnavailable returns true if err is an UnavailableError
func IsUnavailable(err error) bool {
	_, ok := err.(UnavailableError)
	return ok
}
