/*
report.go - Financial reporting engine

PURPOSE:
  Composes cash, inventory valuation, and top-seller analytics into a
  single point-in-time report. The reference catalog prices the valuation;
  actual stock on hand always comes from the ledger.

FAIL-SOFT CONTRACT:
  Like the query engine, reporting never fails a request: unreadable
  pieces degrade to neutral values so the report stays available under
  partial data faults.

SEE ALSO:
  - query.go: The stock/cash primitives this composes
  - catalog: The source of reference items
*/
package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// topSellerLimit caps the top_selling_products section.
const topSellerLimit = 5

// =============================================================================
// REPORT SHAPES
// =============================================================================

// FinancialReport is the complete point-in-time company report.
type FinancialReport struct {
	AsOfDate           Date
	CashBalance        decimal.Decimal
	InventoryValue     decimal.Decimal
	TotalAssets        decimal.Decimal
	InventorySummary   []InventoryLine
	TopSellingProducts []ProductSales
}

// InventoryLine is one reference item's stock and valuation.
type InventoryLine struct {
	ItemName  string
	Stock     int64
	UnitPrice decimal.Decimal
	Value     decimal.Decimal
}

// ProductSales is one item's aggregated sales.
type ProductSales struct {
	ItemName     string
	TotalUnits   int64
	TotalRevenue decimal.Decimal
}

// =============================================================================
// CATALOG CONTRACT
// =============================================================================

// Catalog supplies the static reference inventory table.
type Catalog interface {
	ReferenceItems(ctx context.Context) ([]ReferenceItem, error)
}

// =============================================================================
// REPORT ENGINE
// =============================================================================

// ReportEngine builds financial reports from the query engine and the
// reference catalog.
type ReportEngine struct {
	queries *QueryEngine
	catalog Catalog
	store   Store
}

func NewReportEngine(queries *QueryEngine, catalog Catalog, store Store) *ReportEngine {
	return &ReportEngine{queries: queries, catalog: catalog, store: store}
}

// Report builds the company report as of asOf. It never fails: unreadable
// sections come back as their neutral defaults.
func (r *ReportEngine) Report(ctx context.Context, asOf Date) *FinancialReport {
	report := &FinancialReport{
		AsOfDate:       asOf,
		CashBalance:    r.queries.CashBalance(ctx, asOf),
		InventoryValue: decimal.Zero,
	}

	items, err := r.catalog.ReferenceItems(ctx)
	if err != nil {
		items = nil
	}

	for _, item := range items {
		stock := r.queries.NetStock(ctx, item.ItemName, asOf)
		value := item.UnitPrice.Mul(decimal.NewFromInt(stock))
		report.InventoryValue = report.InventoryValue.Add(value)
		report.InventorySummary = append(report.InventorySummary, InventoryLine{
			ItemName:  item.ItemName,
			Stock:     stock,
			UnitPrice: item.UnitPrice,
			Value:     value,
		})
	}

	report.TotalAssets = report.CashBalance.Add(report.InventoryValue)
	report.TopSellingProducts = r.topSellers(ctx, asOf)
	return report
}

// topSellers groups sales by item through asOf and returns at most
// topSellerLimit entries, ordered by revenue descending with item name
// breaking ties.
func (r *ReportEngine) topSellers(ctx context.Context, asOf Date) []ProductSales {
	recs, err := r.store.Through(ctx, asOf)
	if err != nil {
		return nil
	}

	totals := make(map[string]*ProductSales)
	for _, rec := range recs {
		if rec.Type != TxSale || rec.ItemName == nil {
			continue
		}
		ps, ok := totals[*rec.ItemName]
		if !ok {
			ps = &ProductSales{ItemName: *rec.ItemName, TotalRevenue: decimal.Zero}
			totals[*rec.ItemName] = ps
		}
		ps.TotalUnits += rec.UnitCount()
		ps.TotalRevenue = ps.TotalRevenue.Add(rec.Price)
	}

	ranked := make([]ProductSales, 0, len(totals))
	for _, ps := range totals {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalRevenue.Equal(ranked[j].TotalRevenue) {
			return ranked[i].TotalRevenue.GreaterThan(ranked[j].TotalRevenue)
		}
		return ranked[i].ItemName < ranked[j].ItemName
	})

	if len(ranked) > topSellerLimit {
		ranked = ranked[:topSellerLimit]
	}
	return ranked
}
