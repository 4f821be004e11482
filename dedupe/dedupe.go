// Package dedupe detects transactions which exactly match a previously accepted transaction
package dedupe

import (
	"sort"

	"github.com/johnstarich/tally/ledger"
)

// Detector classifies incoming transactions against the accepted set, which is kept sorted by amount.
//
// By default only the single accepted transaction located by the binary search is compared, so when several accepted
// transactions share an amount a duplicate of one of the others is not detected. WithBucketScan removes this limitation.
type Detector struct {
	accepted   []ledger.Transaction
	duplicates []ledger.Transaction
	bucketScan bool
}

// Option configures a Detector
type Option func(*Detector)

// WithBucketScan compares every accepted transaction with a matching amount, not only the one found by binary search.
// This changes which transactions are classified as duplicates.
func WithBucketScan() Option {
	return func(d *Detector) {
		d.bucketScan = true
	}
}

// New creates an empty Detector
func New(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsDuplicate returns true if txn matches an accepted transaction on every field. Duplicates are recorded.
func (d *Detector) IsDuplicate(txn ledger.Transaction) bool {
	if !d.isDuplicate(txn) {
		return false
	}
	d.duplicates = append(d.duplicates, txn)
	return true
}

func (d *Detector) isDuplicate(txn ledger.Transaction) bool {
	if len(d.accepted) == 0 {
		return false
	}
	min, max := d.accepted[0].Amount, d.accepted[len(d.accepted)-1].Amount
	if txn.Amount.GreaterThan(max) || txn.Amount.LessThan(min) {
		return false
	}

	match := d.search(txn)
	if match < 0 {
		return false
	}
	if d.accepted[match].Equal(txn) {
		return true
	}
	if !d.bucketScan {
		return false
	}
	for i := match - 1; i >= 0 && d.accepted[i].Amount.Equal(txn.Amount); i-- {
		if d.accepted[i].Equal(txn) {
			return true
		}
	}
	for i := match + 1; i < len(d.accepted) && d.accepted[i].Amount.Equal(txn.Amount); i++ {
		if d.accepted[i].Equal(txn) {
			return true
		}
	}
	return false
}

// search returns the index of an accepted transaction with the same amount as txn, or -1 if there is none
func (d *Detector) search(txn ledger.Transaction) int {
	low, high := 0, len(d.accepted)-1
	for low <= high {
		mid := low + (high-low)/2
		switch d.accepted[mid].Amount.Cmp(txn.Amount) {
		case 0:
			return mid
		case -1:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	return -1
}

// Accept adds txn to the accepted set, after any accepted transactions with the same amount
func (d *Detector) Accept(txn ledger.Transaction) {
	index := sort.Search(len(d.accepted), func(i int) bool {
		return d.accepted[i].Amount.GreaterThan(txn.Amount)
	})
	d.accepted = append(d.accepted, ledger.Transaction{})
	copy(d.accepted[index+1:], d.accepted[index:])
	d.accepted[index] = txn
}

// Accepted returns the accepted transactions sorted by amount
func (d *Detector) Accepted() []ledger.Transaction {
	return append([]ledger.Transaction(nil), d.accepted...)
}

// Duplicates returns the duplicate transactions in the order they were detected
func (d *Detector) Duplicates() []ledger.Transaction {
	return append([]ledger.Transaction(nil), d.duplicates...)
}
