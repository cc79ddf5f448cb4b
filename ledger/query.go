/*
query.go - Point-in-time queries over the ledger

PURPOSE:
  Computes net stock per item and cash balance as of a given date by
  replaying the ledger. These are pure readers over immutable data: safe
  for unbounded concurrent callers, no locking beyond the store's own
  read consistency.

FAIL-SOFT CONTRACT:
  Read errors yield neutral defaults (0 stock, zero cash) rather than
  propagating. Reporting must remain available even under partial data
  faults; writers are the ones that surface errors loudly.

SEE ALSO:
  - ledger.go: The Store these queries replay
  - report.go: Composes these queries into the financial report
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUERY ENGINE
// =============================================================================

// QueryEngine answers point-in-time stock and cash questions. The as-of
// date is always inclusive.
type QueryEngine struct {
	store Store
}

func NewQueryEngine(store Store) *QueryEngine {
	return &QueryEngine{store: store}
}

// NetStock returns the net unit count for item as of asOf: stock ordered
// minus stock sold. Returns 0 when no records match or the read fails.
func (q *QueryEngine) NetStock(ctx context.Context, item string, asOf Date) int64 {
	recs, err := q.store.Through(ctx, asOf)
	if err != nil {
		return 0
	}

	var net int64
	for _, rec := range recs {
		if rec.ItemName == nil || *rec.ItemName != item {
			continue
		}
		switch rec.Type {
		case TxStockOrder:
			net += rec.UnitCount()
		case TxSale:
			net -= rec.UnitCount()
		}
	}
	return net
}

// AllPositiveStock returns net stock grouped by item as of asOf, filtered
// to items with a strictly positive net. Items at or below zero are absent
// from the map, not zeroed.
func (q *QueryEngine) AllPositiveStock(ctx context.Context, asOf Date) map[string]int64 {
	recs, err := q.store.Through(ctx, asOf)
	if err != nil {
		return map[string]int64{}
	}

	nets := make(map[string]int64)
	for _, rec := range recs {
		if rec.ItemName == nil {
			continue
		}
		switch rec.Type {
		case TxStockOrder:
			nets[*rec.ItemName] += rec.UnitCount()
		case TxSale:
			nets[*rec.ItemName] -= rec.UnitCount()
		}
	}

	for item, net := range nets {
		if net <= 0 {
			delete(nets, item)
		}
	}
	return nets
}

// CashBalance returns sales revenue minus stock purchase cost as of asOf.
// Returns zero when no records exist or the read fails.
func (q *QueryEngine) CashBalance(ctx context.Context, asOf Date) decimal.Decimal {
	recs, err := q.store.Through(ctx, asOf)
	if err != nil {
		return decimal.Zero
	}

	balance := decimal.Zero
	for _, rec := range recs {
		switch rec.Type {
		case TxSale:
			balance = balance.Add(rec.Price)
		case TxStockOrder:
			balance = balance.Sub(rec.Price)
		}
	}
	return balance
}
