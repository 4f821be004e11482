// Package daily sums transactions per calendar date and derives running balances
package daily

import (
	"sort"
	"time"

	"github.com/johnstarich/tally/ledger"
	"github.com/shopspring/decimal"
)

// Total is the net amount of all transactions on Date
type Total struct {
	Date  time.Time
	Total decimal.Decimal
}

// Balance is the cumulative balance at the end of Date
type Balance struct {
	Date    time.Time
	Balance decimal.Decimal
}

// Totals maps calendar dates to their totals
type Totals struct {
	order  []string
	byDate map[string]*Total
}

// NewTotals creates an empty set of daily totals
func NewTotals() *Totals {
	return &Totals{byDate: make(map[string]*Total)}
}

// Add adds txn's amount to the total for its date, creating it if necessary
func (t *Totals) Add(txn ledger.Transaction) {
	key := txn.DateKey()
	if total, exists := t.byDate[key]; exists {
		total.Total = total.Total.Add(txn.Amount)
		return
	}
	t.byDate[key] = &Total{Date: txn.Date, Total: txn.Amount}
	t.order = append(t.order, key)
}

// Len returns the number of distinct dates
func (t *Totals) Len() int {
	return len(t.order)
}

// List returns the totals in the order their dates were first seen
func (t *Totals) List() []Total {
	totals := make([]Total, 0, len(t.order))
	for _, key := range t.order {
		totals = append(totals, *t.byDate[key])
	}
	return totals
}

// CalculateBalances sorts totals by date and returns the running balance of each date
func CalculateBalances(totals []Total) []Balance {
	sorted := append([]Total(nil), totals...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date.Before(sorted[b].Date)
	})

	balances := make([]Balance, 0, len(sorted))
	running := decimal.Zero
	for _, total := range sorted {
		running = running.Add(total.Total)
		balances = append(balances, Balance{Date: total.Date, Balance: running})
	}
	return balances
}
