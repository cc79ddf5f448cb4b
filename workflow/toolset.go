/*
toolset.go - Tool permission sets per capability

PURPOSE:
  Each pipeline stage may only touch the ledger through the tools its role
  allows. Rather than trusting stage implementations, the coordinator hands
  each one a narrow interface:

    InventoryDecider  reads stock + delivery estimate; restock appends only
    Quoter            reads the financial report + quote history
    SalesFinalizer    delivery estimate; sale appends only
    Classifier        nothing
    Invoicer          nothing

  On the INQUIRY branch the inventory tools are additionally read-only:
  no ledger mutation is permitted there at all.

SEE ALSO:
  - capability.go: The stage contracts these tools plug into
  - ledger: The engines the tools delegate to
*/
package workflow

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
)

// =============================================================================
// TOOL INTERFACES
// =============================================================================

// InventoryTools is the inventory stage's tool set.
type InventoryTools interface {
	// NetStock returns net stock for an item as of a date.
	NetStock(ctx context.Context, item string, asOf ledger.Date) int64

	// AllPositiveStock returns every item with positive net stock.
	AllPositiveStock(ctx context.Context, asOf ledger.Date) map[string]int64

	// EstimateDelivery estimates the supplier delivery date for a restock.
	EstimateDelivery(baseDate string, quantity int64) ledger.Date

	// RecordRestock appends a stock order to the ledger. Restock is the
	// only write the inventory stage may perform, and it is disabled
	// entirely on the INQUIRY branch.
	RecordRestock(ctx context.Context, item string, units int64, price decimal.Decimal, date ledger.Date) (int64, error)
}

// QuotingTools is the quoting stage's tool set. Read-only.
type QuotingTools interface {
	// Report returns the financial report as of a date.
	Report(ctx context.Context, asOf ledger.Date) *ledger.FinancialReport

	// SearchQuoteHistory returns past quotes matching every term.
	SearchQuoteHistory(ctx context.Context, terms []string, limit int) ([]quotes.Quote, error)
}

// SalesTools is the sales finalization stage's tool set.
type SalesTools interface {
	// EstimateDelivery estimates the customer delivery date.
	EstimateDelivery(baseDate string, quantity int64) ledger.Date

	// RecordSale appends a sale to the ledger. The sale is the only write
	// the sales stage may perform.
	RecordSale(ctx context.Context, item string, units int64, price decimal.Decimal, date ledger.Date) (int64, error)
}

// =============================================================================
// IMPLEMENTATIONS - backed by the ledger engines
// =============================================================================

type inventoryToolset struct {
	queries *ledger.QueryEngine
	writer  *ledger.Ledger
	// readOnly marks the INQUIRY branch, where no ledger mutation is
	// permitted.
	readOnly bool
}

func (t *inventoryToolset) NetStock(ctx context.Context, item string, asOf ledger.Date) int64 {
	return t.queries.NetStock(ctx, item, asOf)
}

func (t *inventoryToolset) AllPositiveStock(ctx context.Context, asOf ledger.Date) map[string]int64 {
	return t.queries.AllPositiveStock(ctx, asOf)
}

func (t *inventoryToolset) EstimateDelivery(baseDate string, quantity int64) ledger.Date {
	return ledger.EstimateDelivery(baseDate, quantity)
}

func (t *inventoryToolset) RecordRestock(ctx context.Context, item string, units int64, price decimal.Decimal, date ledger.Date) (int64, error) {
	if t.readOnly {
		return 0, ErrLedgerWriteNotAllowed
	}
	return t.writer.Append(ctx, ledger.StockOrder(item, units, price, date))
}

type quotingToolset struct {
	reports *ledger.ReportEngine
	history quotes.History
}

func (t *quotingToolset) Report(ctx context.Context, asOf ledger.Date) *ledger.FinancialReport {
	return t.reports.Report(ctx, asOf)
}

func (t *quotingToolset) SearchQuoteHistory(ctx context.Context, terms []string, limit int) ([]quotes.Quote, error) {
	if t.history == nil {
		return nil, nil
	}
	return t.history.Search(ctx, terms, limit)
}

type salesToolset struct {
	writer *ledger.Ledger
	// binding, when set, pins the sale price to quotedTotal.
	binding     bool
	quotedTotal decimal.Decimal
}

func (t *salesToolset) EstimateDelivery(baseDate string, quantity int64) ledger.Date {
	return ledger.EstimateDelivery(baseDate, quantity)
}

func (t *salesToolset) RecordSale(ctx context.Context, item string, units int64, price decimal.Decimal, date ledger.Date) (int64, error) {
	if t.binding && !t.quotedTotal.IsZero() && !price.Equal(t.quotedTotal) {
		return 0, &QuoteMismatchError{Quoted: t.quotedTotal, Recorded: price}
	}
	return t.writer.Append(ctx, ledger.Sale(item, units, price, date))
}
