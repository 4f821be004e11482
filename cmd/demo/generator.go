package main

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/johnstarich/tally/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"
	"golang.org/x/text/currency"
)

// Generator deterministically generates records for an account
type Generator struct {
	Account string
	Start   time.Time
	seed    uint64
}

func (g *Generator) getSeed() uint64 {
	if g.seed == 0 {
		g.seed = seedStringToInt(g.Account)
	}
	return g.seed
}

func seedStringToInt(seed string) uint64 {
	buf := bytes.NewBufferString(seed)
	var reducedVal uint64 = 1
	for val, err := binary.ReadUvarint(buf); err == nil; val, err = binary.ReadUvarint(buf) {
		reducedVal = (reducedVal ^ val) * (val | 1)
	}
	return reducedVal
}

// Records generates count records, newest first, with a duplicate and a malformed amount mixed in
func (g *Generator) Records(count int) []ledger.Record {
	var rng rand.PCGSource
	rng.Seed(g.getSeed())
	random := rand.New(&rng)
	scale, _ := currency.Cash.Rounding(currency.CAD)

	records := make([]ledger.Record, 0, count)
	date := g.Start
	for len(records) < count {
		switch {
		case len(records) > 0 && len(records)%7 == 0:
			// duplicate of the previous record
			records = append(records, records[len(records)-1])
			continue
		case len(records) > 0 && len(records)%11 == 0:
			records = append(records, ledger.NewRecord(date.Format(ledger.DateFormat), "Office Expense", "twelve dollars", "STAPLES #123 VICTORIA BC"))
			continue
		}

		if random.Intn(3) == 0 {
			date = date.AddDate(0, 0, -1)
		}
		choice := payeeChoices[random.Intn(len(payeeChoices))]
		amount := decimal.NewFromFloat(random.Float64() * float64(choice.maxAmount)).Round(int32(scale))
		if !choice.credit {
			amount = amount.Neg()
		}
		records = append(records, ledger.NewRecord(
			date.Format(ledger.DateFormat),
			choice.ledger,
			amount.String(),
			choice.company(random),
		))
	}
	return records
}

type payeeChoice struct {
	name      string
	ledger    string
	maxAmount int
	credit    bool
	suffixes  []string
}

func (p payeeChoice) company(random *rand.Rand) string {
	if len(p.suffixes) == 0 {
		return p.name
	}
	return strings.Join([]string{p.name, p.suffixes[random.Intn(len(p.suffixes))]}, " ")
}

var (
	payeeChoices = []payeeChoice{
		{name: "SHAW CABLESYSTEMS", ledger: "Phone & Internet Expense", maxAmount: 150, suffixes: []string{"CALGARY AB"}},
		{name: "BLACK TOP CABS", ledger: "Travel Expense, Nonlocal", maxAmount: 40, suffixes: []string{"VANCOUVER BC", "RICHMOND BC"}},
		{name: "VANCOUVER TAXI", ledger: "Travel Expense, Nonlocal", maxAmount: 40, suffixes: []string{"VANCOUVER BC"}},
		{name: "COMMODORE LANES & BILL", ledger: "Business Meals & Entertainment Expense", maxAmount: 80, suffixes: []string{"VANCOUVER BC"}},
		{name: "GREEN GRAPE GROCER", ledger: "Business Meals & Entertainment Expense", maxAmount: 60, suffixes: []string{"MISSISSAUGA ON", "VICTORIA BC"}},
		{name: "DROPBOX", ledger: "Computer - Software", maxAmount: 15, suffixes: []string{"xxxxxx8396 CA 9.99 USD @ xx1001"}},
		{name: "FLUX TIMEPIECES", ledger: "Office Expense", maxAmount: 200, suffixes: []string{"VANCOUVER BC", "VICTORIA BC"}},
		{name: "PAYMENT - THANK YOU / PAIEMENT - MERCI", ledger: "", maxAmount: 1000, credit: true},
	}
)
