// Package category totals transactions by their ledger category
package category

import (
	"github.com/johnstarich/tally/ledger"
	"github.com/shopspring/decimal"
)

// Aggregate holds every transaction in a category and their sum
type Aggregate struct {
	Name         string
	Transactions []ledger.Transaction
	Total        decimal.Decimal
}

// Aggregates maps category names to their aggregates. Aggregates are never removed.
type Aggregates struct {
	order  []string
	byName map[string]*Aggregate
}

// New creates an empty set of aggregates
func New() *Aggregates {
	return &Aggregates{byName: make(map[string]*Aggregate)}
}

// Categorize adds txn to the aggregate for its ledger category, creating it if necessary
func (a *Aggregates) Categorize(txn ledger.Transaction) {
	aggregate, exists := a.byName[txn.Ledger]
	if !exists {
		a.byName[txn.Ledger] = &Aggregate{
			Name:         txn.Ledger,
			Transactions: []ledger.Transaction{txn},
			Total:        txn.Amount,
		}
		a.order = append(a.order, txn.Ledger)
		return
	}
	aggregate.Transactions = append(aggregate.Transactions, txn)
	aggregate.Total = aggregate.Total.Add(txn.Amount)
}

// Get returns a copy of the named aggregate
func (a *Aggregates) Get(name string) (Aggregate, bool) {
	aggregate, exists := a.byName[name]
	if !exists {
		return Aggregate{}, false
	}
	return aggregate.copy(), true
}

// Len returns the number of categories
func (a *Aggregates) Len() int {
	return len(a.order)
}

// List returns copies of all aggregates in the order their categories were first seen
func (a *Aggregates) List() []Aggregate {
	aggregates := make([]Aggregate, 0, len(a.order))
	for _, name := range a.order {
		aggregates = append(aggregates, a.byName[name].copy())
	}
	return aggregates
}

func (a *Aggregate) copy() Aggregate {
	return Aggregate{
		Name:         a.Name,
		Transactions: append([]ledger.Transaction(nil), a.Transactions...),
		Total:        a.Total,
	}
}
