package core

import (
	"errors"
	"strconv"
	"time"
)

var ErrDuplicateID = errors.New("duplicate transaction id")

// Ledger is the ordered collection of transactions for one account,
// newest first. Order matters for display only; every aggregation over a
// ledger is order-independent.
//
// A Ledger is a plain in-memory value. Durability is the store's concern:
// the owning service persists the whole ledger as one unit after each
// mutation.
type Ledger struct {
	items []Transaction
}

// NewLedger builds a ledger from existing transactions, assumed newest first.
func NewLedger(items []Transaction) *Ledger {
	l := &Ledger{items: make([]Transaction, len(items))}
	copy(l.items, items)
	return l
}

// Append adds a fully-validated transaction at the head of the sequence.
func (l *Ledger) Append(t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for _, it := range l.items {
		if it.ID == t.ID {
			return ErrDuplicateID
		}
	}
	l.items = append([]Transaction{t}, l.items...)
	return nil
}

// Remove deletes the transaction with the given id. Removing an id that is
// not present is a no-op: deletes are forgiving.
func (l *Ledger) Remove(id string) {
	for i, it := range l.items {
		if it.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// All returns a copy of the full sequence, newest first.
func (l *Ledger) All() []Transaction {
	out := make([]Transaction, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int {
	return len(l.items)
}

// NewID derives a creation-ordered transaction id from now (milliseconds
// since epoch). When several transactions land within the same millisecond
// the id is bumped past the current maximum so ids stay unique and monotonic.
func (l *Ledger) NewID(now time.Time) string {
	id := now.UnixMilli()
	for _, it := range l.items {
		if n, err := strconv.ParseInt(it.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	return strconv.FormatInt(id, 10)
}
