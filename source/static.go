package source

import (
	"context"
	"encoding/json"
	"io"

	"github.com/johnstarich/tally/ledger"
	"github.com/pkg/errors"
)

// Static serves an in-memory list of records in fixed size pages
type Static struct {
	records  []ledger.Record
	pageSize int
}

// NewStatic creates a Static source. Panics if pageSize is not positive.
func NewStatic(records []ledger.Record, pageSize int) *Static {
	if pageSize < 1 {
		panic("Page size must be >= 1")
	}
	return &Static{records: records, pageSize: pageSize}
}

// LoadStatic reads a JSON array of records from r
func LoadStatic(r io.Reader, pageSize int) (*Static, error) {
	if pageSize < 1 {
		return nil, errors.Errorf("Page size must be a positive integer: %d", pageSize)
	}
	var records []ledger.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "Error decoding records")
	}
	return NewStatic(records, pageSize), nil
}

// Page implements Source. Pages past the end are empty.
func (s *Static) Page(ctx context.Context, page int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, NewUnavailableError(page, err)
	}
	if page < 1 {
		return Page{}, NewUnavailableError(page, errors.New("Page must be >= 1"))
	}
	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if start > len(s.records) {
		start = len(s.records)
	}
	if end > len(s.records) {
		end = len(s.records)
	}
	return Page{
		TotalCount:   len(s.records),
		Page:         page,
		Transactions: append([]ledger.Record(nil), s.records[start:end]...),
	}, nil
}
