package daily

import (
	"testing"
	"time"

	"github.com/johnstarich/tally/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDate(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := ledger.ParseDate(date)
	require.NoError(t, err)
	return d
}

func parseDecimal(t *testing.T, amount string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return d
}

func makeTxn(t *testing.T, date, amount string) ledger.Transaction {
	return ledger.Transaction{
		Date:    parseDate(t, date),
		Ledger:  "Auto Expense",
		Amount:  parseDecimal(t, amount),
		Company: "SMART CITY FOODS",
	}
}

func TestAddNewDate(t *testing.T) {
	totals := NewTotals()
	totals.Add(makeTxn(t, "2013-12-17", "6.23"))

	list := totals.List()
	require.Len(t, list, 1)
	assert.Equal(t, parseDate(t, "2013-12-17"), list[0].Date)
	assert.Equal(t, "6.23", list[0].Total.String())
}

func TestAddSameDate(t *testing.T) {
	totals := NewTotals()
	totals.Add(makeTxn(t, "2013-12-17", "6.23"))
	totals.Add(makeTxn(t, "2013-12-17", "10.00"))

	list := totals.List()
	require.Len(t, list, 1)
	assert.True(t, parseDecimal(t, "16.23").Equal(list[0].Total))
}

func TestAddDifferentDate(t *testing.T) {
	totals := NewTotals()
	totals.Add(makeTxn(t, "2013-12-17", "6.23"))
	totals.Add(makeTxn(t, "2013-12-18", "-4.87"))

	assert.Equal(t, 2, totals.Len())
	list := totals.List()
	assert.True(t, parseDecimal(t, "6.23").Equal(list[0].Total))
	assert.True(t, parseDecimal(t, "-4.87").Equal(list[1].Total))
}

func TestCalculateBalances(t *testing.T) {
	five := parseDecimal(t, "5.00")
	for _, tc := range []struct {
		description string
		totals      []Total
		expectDates []string
		expect      []string
	}{
		{
			description: "no totals",
			expect:      []string{},
			expectDates: []string{},
		},
		{
			description: "one day",
			totals:      []Total{{Date: parseDate(t, "2013-12-17"), Total: five}},
			expectDates: []string{"2013-12-17"},
			expect:      []string{"5"},
		},
		{
			description: "consecutive days",
			totals: []Total{
				{Date: parseDate(t, "2013-12-17"), Total: five},
				{Date: parseDate(t, "2013-12-18"), Total: five},
				{Date: parseDate(t, "2013-12-19"), Total: five},
			},
			expectDates: []string{"2013-12-17", "2013-12-18", "2013-12-19"},
			expect:      []string{"5", "10", "15"},
		},
		{
			description: "sorts by date",
			totals: []Total{
				{Date: parseDate(t, "2013-12-22"), Total: parseDecimal(t, "-110.71")},
				{Date: parseDate(t, "2013-12-20"), Total: parseDecimal(t, "100")},
				{Date: parseDate(t, "2013-12-21"), Total: parseDecimal(t, "-17.98")},
			},
			expectDates: []string{"2013-12-20", "2013-12-21", "2013-12-22"},
			expect:      []string{"100", "82.02", "-28.69"},
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			balances := CalculateBalances(tc.totals)
			dates := make([]string, 0, len(balances))
			amounts := make([]string, 0, len(balances))
			for _, balance := range balances {
				dates = append(dates, balance.Date.Format(ledger.DateFormat))
				amounts = append(amounts, balance.Balance.String())
			}
			assert.Equal(t, tc.expectDates, dates)
			assert.Equal(t, tc.expect, amounts)
		})
	}
}

func TestCalculateBalancesDoesNotMutate(t *testing.T) {
	totals := []Total{
		{Date: parseDate(t, "2013-12-19"), Total: decimal.New(1, 0)},
		{Date: parseDate(t, "2013-12-17"), Total: decimal.New(2, 0)},
	}
	CalculateBalances(totals)
	assert.Equal(t, parseDate(t, "2013-12-19"), totals[0].Date)
}

func TestCalculateBalancesFromTotals(t *testing.T) {
	totals := NewTotals()
	totals.Add(makeTxn(t, "2013-12-21", "-8.1"))
	totals.Add(makeTxn(t, "2013-12-22", "-110.71"))
	totals.Add(makeTxn(t, "2013-12-21", "-9.88"))

	balances := CalculateBalances(totals.List())
	require.Len(t, balances, 2)
	assert.Equal(t, "-17.98", balances[0].Balance.String())
	assert.Equal(t, "-128.69", balances[1].Balance.String())
}
