/*
ledger.go - Append-only transaction log

PURPOSE:
  The Ledger is the immutable source of truth for stock and cash. Every
  supplier restock and customer sale is recorded here. Stock on hand and
  cash balance are always computed by replaying records - there's no
  separate balance field that can drift out of sync.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. IMMUTABLE: Once written, records cannot be modified
  3. SEQUENTIAL IDS: The store assigns ids atomically with the insert,
     so ids are unique and monotonically increasing even under
     concurrent appends
  4. VALIDATED: Unrecognized transaction types are rejected before
     anything reaches the store

CORRECTIONS:
  If a mistake is made, you don't edit the record. You append a
  compensating record with the opposite monetary/unit effect. Both
  remain in the ledger; the net effect is the correction.

SEE ALSO:
  - store/sqlite: Durable Store implementation
  - ledger/store: In-memory Store for tests
  - query.go: Read side over the same Store
*/
package ledger

import (
	"context"
	"fmt"
)

// =============================================================================
// STORE - Persistence contract
// =============================================================================

// Store persists ledger records. Implementations must make Append atomic:
// the insert and the id assignment happen as one serialized unit, so a
// record is either fully visible with its id or not written at all.
//
// There is deliberately no update or delete operation.
type Store interface {
	// Append persists rec and returns its assigned id.
	Append(ctx context.Context, rec TransactionRecord) (int64, error)

	// Through returns every record with Date <= asOf, in chronological
	// order (date, then id). Read-only.
	Through(ctx context.Context, asOf Date) ([]TransactionRecord, error)

	// All returns every record in chronological order. Read-only.
	All(ctx context.Context) ([]TransactionRecord, error)
}

// =============================================================================
// LEDGER - Validated append facade over a Store
// =============================================================================

// Ledger wraps a Store with append validation. All writers go through here;
// readers may use the QueryEngine directly.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Append validates and persists a record, returning its assigned id.
// Validation failures are fatal for the append: nothing is written.
func (l *Ledger) Append(ctx context.Context, rec TransactionRecord) (int64, error) {
	if !rec.Type.Valid() {
		return 0, &InvalidTypeError{Type: rec.Type}
	}
	if (rec.ItemName == nil) != (rec.Units == nil) {
		return 0, ErrMissingUnits
	}
	if rec.Date.IsZero() {
		return 0, ErrInvalidDate
	}

	id, err := l.store.Append(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	return id, nil
}

// Through exposes the store's chronological read for callers that need the
// raw records (reporting, admin views).
func (l *Ledger) Through(ctx context.Context, asOf Date) ([]TransactionRecord, error) {
	return l.store.Through(ctx, asOf)
}

// All returns the full ledger history.
func (l *Ledger) All(ctx context.Context) ([]TransactionRecord, error) {
	return l.store.All(ctx)
}
