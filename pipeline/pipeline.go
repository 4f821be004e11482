// Package pipeline ingests pages of records from a source, filters duplicates, and aggregates the accepted transactions
package pipeline

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/johnstarich/tally/category"
	"github.com/johnstarich/tally/daily"
	"github.com/johnstarich/tally/dedupe"
	sErrors "github.com/johnstarich/tally/errors"
	"github.com/johnstarich/tally/ledger"
	"github.com/johnstarich/tally/payee"
	"github.com/johnstarich/tally/source"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pipeline runs ingestions against a single source. Each Run starts from empty state.
type Pipeline struct {
	source     source.Source
	logger     *zap.Logger
	locations  []string
	bucketScan bool
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLocations sets the ordered location list used to normalize company names
func WithLocations(locations []string) Option {
	return func(p *Pipeline) {
		p.locations = locations
	}
}

// WithBucketScan makes duplicate detection compare every accepted transaction with a matching amount. See dedupe.WithBucketScan.
func WithBucketScan() Option {
	return func(p *Pipeline) {
		p.bucketScan = true
	}
}

// New creates a Pipeline reading from src
func New(src source.Source, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    src,
		logger:    logger,
		locations: payee.DefaultLocations,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rejection is a record which could not be coerced into a transaction
type Rejection struct {
	Page   int
	Index  int
	Record ledger.Record
	Err    error
}

// Result is the product of a Run
type Result struct {
	RunID         string
	Pages         int
	Balance       decimal.Decimal
	Accepted      []ledger.Transaction
	Duplicates    []ledger.Transaction
	Categories    []category.Aggregate
	DailyBalances []daily.Balance
	Rejected      []Rejection
}

// Vendors returns the unique company names of accepted transactions, sorted
func (r Result) Vendors() []string {
	seen := make(map[string]bool, len(r.Accepted))
	vendors := make([]string, 0, len(r.Accepted))
	for _, txn := range r.Accepted {
		if !seen[txn.Company] {
			seen[txn.Company] = true
			vendors = append(vendors, txn.Company)
		}
	}
	sort.Strings(vendors)
	return vendors
}

// RejectedErr combines all rejection errors, or returns nil if there were none
func (r Result) RejectedErr() error {
	var errs sErrors.Errors
	for _, rejection := range r.Rejected {
		errs.AddErr(errors.Wrapf(rejection.Err, "Rejected record #%d on page #%d", rejection.Index, rejection.Page))
	}
	return errs.ErrOrNil()
}

// run holds the state of a single ingestion
type run struct {
	id         string
	logger     *zap.Logger
	locations  []string
	balance    decimal.Decimal
	accepted   []ledger.Transaction
	rejected   []Rejection
	detector   *dedupe.Detector
	categories *category.Aggregates
	dailies    *daily.Totals
	pages      int
}

// Run fetches pages until the number of processed records reaches the total declared by the source's latest page.
//
// If a page can't be fetched, Run returns a source.UnavailableError along with the result of every page applied before the failure.
// Pages are applied whole: cancellation is only checked between pages.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	r := p.newRun()
	r.logger.Info("Starting run")

	processed, totalCount := 0, 1
	for page := 1; processed < totalCount; page++ {
		if err := ctx.Err(); err != nil {
			return r.result(), source.NewUnavailableError(page, err)
		}
		r.logger.Info("Fetching page", zap.Int("page", page), zap.Int("processed", processed), zap.Int("totalCount", totalCount))
		response, err := p.source.Page(ctx, page)
		if err != nil {
			r.logger.Error("Failed to fetch page", zap.Int("page", page), zap.Error(err))
			if !source.IsUnavailable(err) {
				err = source.NewUnavailableError(page, err)
			}
			return r.result(), err
		}
		totalCount = response.TotalCount
		if len(response.Transactions) == 0 {
			if processed < totalCount {
				r.logger.Warn("Source returned an empty page before reaching its declared total",
					zap.Int("page", page),
					zap.Int("processed", processed),
					zap.Int("totalCount", totalCount),
				)
			}
			break
		}

		for index, record := range response.Transactions {
			r.apply(page, index, record)
		}
		processed += len(response.Transactions)
		r.pages++
	}

	result := r.result()
	r.logger.Info("Run complete",
		zap.Int("pages", result.Pages),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("duplicates", len(result.Duplicates)),
		zap.Int("rejected", len(result.Rejected)),
		zap.String("balance", result.Balance.String()),
	)
	return result, nil
}

func (p *Pipeline) newRun() *run {
	id := uuid.New().String()
	var detectorOpts []dedupe.Option
	if p.bucketScan {
		detectorOpts = append(detectorOpts, dedupe.WithBucketScan())
	}
	return &run{
		id:         id,
		logger:     p.logger.With(zap.String("run", id)),
		locations:  p.locations,
		balance:    decimal.Zero,
		detector:   dedupe.New(detectorOpts...),
		categories: category.New(),
		dailies:    daily.NewTotals(),
	}
}

// apply processes one record. Either every effect of an accepted transaction is applied or none are.
func (r *run) apply(page, index int, record ledger.Record) {
	txn, err := record.Transaction(r.locations)
	if err != nil {
		r.rejected = append(r.rejected, Rejection{Page: page, Index: index, Record: record, Err: err})
		r.logger.Warn("Rejected malformed record",
			zap.Int("page", page),
			zap.Int("index", index),
			zap.Stringer("record", record),
			zap.Error(err),
		)
		return
	}

	if r.detector.IsDuplicate(txn) {
		r.logger.Debug("Skipping duplicate transaction", zap.Int("page", page), zap.Int("index", index), zap.Stringer("transaction", txn))
		return
	}

	r.balance = r.balance.Add(txn.Amount)
	r.categories.Categorize(txn)
	r.dailies.Add(txn)
	r.detector.Accept(txn)
	r.accepted = append(r.accepted, txn)
}

func (r *run) result() Result {
	return Result{
		RunID:         r.id,
		Pages:         r.pages,
		Balance:       r.balance,
		Accepted:      append([]ledger.Transaction(nil), r.accepted...),
		Duplicates:    r.detector.Duplicates(),
		Categories:    r.categories.List(),
		DailyBalances: daily.CalculateBalances(r.dailies.List()),
		Rejected:      append([]Rejection(nil), r.rejected...),
	}
}
