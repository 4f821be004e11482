package ledger

import (
	"github.com/johnstarich/tally/payee"
	"github.com/johnstarich/tally/pipe"
	"github.com/shopspring/decimal"
)

// Record is a transaction as received from a source. Nil fields were missing from the source's response.
type Record struct {
	Date    *string `json:"Date"`
	Ledger  *string `json:"Ledger"`
	Amount  *string `json:"Amount"`
	Company *string `json:"Company"`
}

// NewRecord creates a Record with every field set
func NewRecord(date, ledger, amount, company string) Record {
	return Record{
		Date:    &date,
		Ledger:  &ledger,
		Amount:  &amount,
		Company: &company,
	}
}

// Transaction coerces r into a Transaction, normalizing the company name with the given locations.
// Returns a RecordError if a field is missing or can't be parsed.
func (r Record) Transaction(locations []string) (Transaction, error) {
	var txn Transaction
	err := pipe.OpFuncs{
		requireFields(r),
		func() error {
			date, err := ParseDate(*r.Date)
			if err != nil {
				return NewRecordError("Date", *r.Date, ErrInvalidDate)
			}
			txn.Date = date
			return nil
		},
		func() error {
			amount, err := decimal.NewFromString(*r.Amount)
			if err != nil {
				return NewRecordError("Amount", *r.Amount, ErrInvalidAmount)
			}
			txn.Amount = amount
			return nil
		},
		func() error {
			txn.Ledger = *r.Ledger
			txn.Company = payee.Normalize(*r.Company, locations)
			return nil
		},
	}.Do()
	return txn, err
}

func requireFields(r Record) func() error {
	return func() error {
		for _, field := range []struct {
			name  string
			value *string
		}{
			{"Date", r.Date},
			{"Ledger", r.Ledger},
			{"Amount", r.Amount},
			{"Company", r.Company},
		} {
			if field.value == nil {
				return NewRecordError(field.name, "", ErrMissingField)
			}
		}
		return nil
	}
}

func (r Record) String() string {
	return "{" + valueOrNil(r.Date) + " " + valueOrNil(r.Ledger) + " " + valueOrNil(r.Amount) + " " + valueOrNil(r.Company) + "}"
}

func valueOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
