/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All ledger error types in one place for consistency and discoverability.
  Callers match with errors.Is; packages layered on top wrap these with
  additional context.

SEE ALSO:
  - ledger.go: Append validation uses these errors
  - store/sqlite: Maps driver failures onto ErrAppendFailed
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTransactionType is returned when an append carries a
	// transaction type other than stock_orders or sales. The append is
	// rejected and nothing is written.
	ErrInvalidTransactionType = errors.New("transaction type must be 'stock_orders' or 'sales'")

	// ErrMissingUnits is returned when an append names an item but carries
	// no unit count, or vice versa. Item and units travel together.
	ErrMissingUnits = errors.New("item records require a unit count")

	// ErrInvalidDate is returned when an append carries a zero date.
	ErrInvalidDate = errors.New("transaction date is required")

	// ErrAppendFailed is returned when a record cannot be persisted.
	ErrAppendFailed = errors.New("failed to append transaction")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidTypeError carries the rejected transaction type.
type InvalidTypeError struct {
	Type TxType
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid transaction type %q: must be %q or %q", e.Type, TxStockOrder, TxSale)
}

func (e *InvalidTypeError) Unwrap() error {
	return ErrInvalidTransactionType
}
