/*
Package ledger provides the core financial/inventory engine.

PURPOSE:
  This package contains the append-only transaction log and the read-side
  engines derived from it: point-in-time stock and cash queries, financial
  reporting, and the supplier delivery estimator. The ledger is the single
  source of truth - stock on hand and cash are always computed by replaying
  transactions, never read from a mutable counter.

KEY CONCEPTS IN THIS FILE (types.go):
  - TransactionRecord: An immutable ledger entry (stock order or sale)
  - TxType: The two recognized transaction types
  - ReferenceItem: A static catalog entry used to price inventory

DESIGN PRINCIPLES:
  1. Immutability: Records are never modified or deleted, only compensated
  2. Precision: Uses decimal.Decimal for money to avoid float drift
  3. Nullability: Pointer fields model records with no item attached
     (pure cash movements such as opening capital)

SEE ALSO:
  - ledger.go: Append validation and the Store contract
  - query.go: Point-in-time stock and cash queries
  - report.go: Financial report composition
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION TYPE
// =============================================================================

type TxType string

const (
	// TxStockOrder records stock purchased from a supplier. Units flow in,
	// cash flows out.
	TxStockOrder TxType = "stock_orders"

	// TxSale records stock sold to a customer. Units flow out, cash flows in.
	// A sale with no item attached is a pure cash movement (opening capital).
	TxSale TxType = "sales"
)

// Valid reports whether t is one of the two recognized transaction types.
func (t TxType) Valid() bool {
	return t == TxStockOrder || t == TxSale
}

// =============================================================================
// TRANSACTION RECORD - Immutable ledger entry
// =============================================================================

// TransactionRecord is a single entry in the append-only ledger.
//
// INVARIANTS:
//   - ID is assigned by the store: unique, sequential, monotonically increasing
//   - Once appended, a record is never mutated or deleted; corrections are
//     made by appending compensating records
//   - ItemName is nil only for pure cash movements; Units is nil iff
//     ItemName is nil
type TransactionRecord struct {
	ID       int64
	ItemName *string // nil for item-less cash movements
	Type     TxType
	Units    *int64 // nil iff ItemName is nil
	Price    decimal.Decimal
	Date     Date
}

// Item returns the item name, or "" for item-less records.
func (r TransactionRecord) Item() string {
	if r.ItemName == nil {
		return ""
	}
	return *r.ItemName
}

// UnitCount returns the unit count, or 0 for item-less records.
func (r TransactionRecord) UnitCount() int64 {
	if r.Units == nil {
		return 0
	}
	return *r.Units
}

// Record constructors. IDs are assigned on append; the zero ID marks an
// unpersisted record.

// StockOrder builds a supplier restock record.
func StockOrder(item string, units int64, price decimal.Decimal, date Date) TransactionRecord {
	return TransactionRecord{ItemName: &item, Type: TxStockOrder, Units: &units, Price: price, Date: date}
}

// Sale builds a customer sale record.
func Sale(item string, units int64, price decimal.Decimal, date Date) TransactionRecord {
	return TransactionRecord{ItemName: &item, Type: TxSale, Units: &units, Price: price, Date: date}
}

// CashMovement builds an item-less record that only affects the cash
// balance, such as the opening capital injection.
func CashMovement(typ TxType, price decimal.Decimal, date Date) TransactionRecord {
	return TransactionRecord{Type: typ, Price: price, Date: date}
}

// =============================================================================
// REFERENCE ITEM - Static catalog entry (NOT ledger-derived)
// =============================================================================

// ReferenceItem is a catalog entry used to price inventory valuation.
// CurrentStock is the seed baseline and is informational only: actual stock
// on hand is always computed from the ledger.
type ReferenceItem struct {
	ItemName      string
	Category      string
	UnitPrice     decimal.Decimal
	CurrentStock  int64
	MinStockLevel int64
}
