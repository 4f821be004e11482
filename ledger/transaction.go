package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateFormat is the layout of transaction dates on the wire
	DateFormat = "2006-01-02"
)

// Transaction is a coerced record: a numeric amount and a normalized company name
type Transaction struct {
	Date    time.Time
	Ledger  string
	Amount  decimal.Decimal
	Company string
}

// Equal returns true if every field of t matches other
func (t Transaction) Equal(other Transaction) bool {
	return t.Date.Equal(other.Date) &&
		t.Ledger == other.Ledger &&
		t.Amount.Equal(other.Amount) &&
		t.Company == other.Company
}

// DateKey returns the calendar date of t, suitable for map keys
func (t Transaction) DateKey() string {
	return t.Date.Format(DateFormat)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s ; %s", t.DateKey(), t.Company, t.Amount.String(), t.Ledger)
}

// ParseDate parses a calendar date in DateFormat
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateFormat, date)
}
