// Package report renders pipeline results as console tables
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/johnstarich/tally/ledger"
	"github.com/johnstarich/tally/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FormatAmount formats a currency amount with a dollar sign and two decimal places, e.g. -$1.50
func FormatAmount(amount decimal.Decimal) string {
	if amount.Sign() < 0 {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// Write renders every section of result to w
func Write(w io.Writer, result pipeline.Result) error {
	if _, err := fmt.Fprintf(w, "BALANCE: %s\n\n", FormatAmount(result.Balance)); err != nil {
		return errors.Wrap(err, "Error writing balance")
	}
	for _, section := range []struct {
		title string
		write func(io.Writer, pipeline.Result)
	}{
		{"VENDORS", writeVendors},
		{"DUPLICATES", writeDuplicates},
		{"EXPENSE CATEGORIES", writeCategories},
		{"DAILY BALANCES", writeDailyBalances},
		{"REJECTED RECORDS", writeRejected},
	} {
		if _, err := fmt.Fprintf(w, "%s\n", section.title); err != nil {
			return errors.Wrapf(err, "Error writing section %s", section.title)
		}
		section.write(w, result)
		if _, err := fmt.Fprintln(w); err != nil {
			return errors.Wrapf(err, "Error writing section %s", section.title)
		}
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func writeVendors(w io.Writer, result pipeline.Result) {
	table := newTable(w, "Vendor")
	for _, vendor := range result.Vendors() {
		table.Append([]string{vendor})
	}
	table.Render()
}

func transactionRow(txn ledger.Transaction) []string {
	return []string{txn.DateKey(), txn.Company, txn.Ledger, FormatAmount(txn.Amount)}
}

func writeDuplicates(w io.Writer, result pipeline.Result) {
	table := newTable(w, "Date", "Company", "Ledger", "Amount")
	for _, txn := range result.Duplicates {
		table.Append(transactionRow(txn))
	}
	table.Render()
}

func writeCategories(w io.Writer, result pipeline.Result) {
	table := newTable(w, "Category", "Date", "Company", "Amount")
	for _, aggregate := range result.Categories {
		for _, txn := range aggregate.Transactions {
			table.Append([]string{aggregate.Name, txn.DateKey(), txn.Company, FormatAmount(txn.Amount)})
		}
		table.Append([]string{aggregate.Name, "", "TOTAL", FormatAmount(aggregate.Total)})
	}
	table.Render()
}

func writeDailyBalances(w io.Writer, result pipeline.Result) {
	table := newTable(w, "Date", "Balance")
	for _, balance := range result.DailyBalances {
		table.Append([]string{balance.Date.Format(ledger.DateFormat), FormatAmount(balance.Balance)})
	}
	table.Render()
}

func writeRejected(w io.Writer, result pipeline.Result) {
	table := newTable(w, "Page", "Index", "Reason")
	for _, rejection := range result.Rejected {
		table.Append([]string{strconv.Itoa(rejection.Page), strconv.Itoa(rejection.Index), rejection.Err.Error()})
	}
	table.Render()
}
