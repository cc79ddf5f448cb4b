package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/difflin/supply-engine/ledger"
	"github.com/shopspring/decimal"
)

// Seeding defaults, matching the company's historical opening position.
const (
	DefaultCoverage = 0.4
	DefaultSeed     = 137

	stockMin    = 200
	stockMax    = 800
	minLevelMin = 50
	minLevelMax = 150
)

// OpeningDate is the ledger's first day.
var OpeningDate = ledger.NewDate(2025, time.January, 1)

// OpeningCash is the starting capital, recorded as an item-less sales entry.
var OpeningCash = decimal.RequireFromString("50000.00")

// SampleInventory selects coverage x len(PaperSupplies) items without
// replacement and assigns each a stock baseline and reorder threshold.
// The same seed always yields the same inventory.
func SampleInventory(coverage float64, seed int64) []ledger.ReferenceItem {
	rng := rand.New(rand.NewSource(seed))

	count := int(float64(len(PaperSupplies)) * coverage)
	indices := rng.Perm(len(PaperSupplies))[:count]

	items := make([]ledger.ReferenceItem, 0, count)
	for _, i := range indices {
		items = append(items, PaperSupplies[i].referenceItem(
			int64(stockMin+rng.Intn(stockMax-stockMin)),
			int64(minLevelMin+rng.Intn(minLevelMax-minLevelMin)),
		))
	}
	return items
}

// CatalogWriter persists the reference inventory table.
type CatalogWriter interface {
	SaveReferenceItems(ctx context.Context, items []ledger.ReferenceItem) error
}

// Seed initializes an empty ledger with the opening position: the starting
// cash entry, one stock order per sampled item at its full baseline cost,
// and the reference inventory table itself.
func Seed(ctx context.Context, l *ledger.Ledger, cat CatalogWriter, coverage float64, seed int64) error {
	items := SampleInventory(coverage, seed)

	if _, err := l.Append(ctx, ledger.CashMovement(ledger.TxSale, OpeningCash, OpeningDate)); err != nil {
		return fmt.Errorf("seeding opening cash: %w", err)
	}

	for _, item := range items {
		cost := item.UnitPrice.Mul(decimal.NewFromInt(item.CurrentStock))
		if _, err := l.Append(ctx, ledger.StockOrder(item.ItemName, item.CurrentStock, cost, OpeningDate)); err != nil {
			return fmt.Errorf("seeding stock for %q: %w", item.ItemName, err)
		}
	}

	if err := cat.SaveReferenceItems(ctx, items); err != nil {
		return fmt.Errorf("saving reference inventory: %w", err)
	}
	return nil
}
