/*
Package catalog provides the static paper-supplies reference data and
ledger seeding.

PURPOSE:
  The company sells a fixed set of paper products. This package holds that
  list (item, category, per-unit price), generates the deterministic sample
  inventory used as the seed baseline, and writes the opening ledger
  entries: starting cash plus one stock order per sampled item.

  The reference table prices inventory valuation in reports. It is never
  consulted for stock on hand - that always comes from the ledger.
*/
package catalog

import (
	"github.com/difflin/supply-engine/ledger"
	"github.com/shopspring/decimal"
)

// Supply is one sellable product: name, category, and per-unit price.
type Supply struct {
	ItemName  string
	Category  string
	UnitPrice decimal.Decimal
}

func supply(name, category string, unitPrice string) Supply {
	return Supply{ItemName: name, Category: category, UnitPrice: decimal.RequireFromString(unitPrice)}
}

// PaperSupplies is the full product list. Paper types are priced per sheet,
// products and large-format items per unit.
var PaperSupplies = []Supply{
	// Paper types
	supply("A4 paper", "paper", "0.05"),
	supply("Letter-sized paper", "paper", "0.06"),
	supply("Cardstock", "paper", "0.15"),
	supply("Colored paper", "paper", "0.10"),
	supply("Glossy paper", "paper", "0.20"),
	supply("Matte paper", "paper", "0.18"),
	supply("Recycled paper", "paper", "0.08"),
	supply("Eco-friendly paper", "paper", "0.12"),
	supply("Poster paper", "paper", "0.25"),
	supply("Banner paper", "paper", "0.30"),
	supply("Kraft paper", "paper", "0.10"),
	supply("Construction paper", "paper", "0.07"),
	supply("Wrapping paper", "paper", "0.15"),
	supply("Glitter paper", "paper", "0.22"),
	supply("Decorative paper", "paper", "0.18"),
	supply("Letterhead paper", "paper", "0.12"),
	supply("Legal-size paper", "paper", "0.08"),
	supply("Crepe paper", "paper", "0.05"),
	supply("Photo paper", "paper", "0.25"),
	supply("Uncoated paper", "paper", "0.06"),
	supply("Butcher paper", "paper", "0.10"),
	supply("Heavyweight paper", "paper", "0.20"),
	supply("Standard copy paper", "paper", "0.04"),
	supply("Bright-colored paper", "paper", "0.12"),
	supply("Patterned paper", "paper", "0.15"),

	// Products
	supply("Paper plates", "product", "0.10"),
	supply("Paper cups", "product", "0.08"),
	supply("Paper napkins", "product", "0.02"),
	supply("Disposable cups", "product", "0.10"),
	supply("Table covers", "product", "1.50"),
	supply("Envelopes", "product", "0.05"),
	supply("Sticky notes", "product", "0.03"),
	supply("Notepads", "product", "2.00"),
	supply("Invitation cards", "product", "0.50"),
	supply("Flyers", "product", "0.15"),
	supply("Party streamers", "product", "0.05"),
	supply("Decorative adhesive tape (washi tape)", "product", "0.20"),
	supply("Paper party bags", "product", "0.25"),
	supply("Name tags with lanyards", "product", "0.75"),
	supply("Presentation folders", "product", "0.50"),

	// Large-format items
	supply("Large poster paper (24x36 inches)", "large_format", "1.00"),
	supply("Rolls of banner paper (36-inch width)", "large_format", "2.50"),

	// Specialty papers
	supply("100 lb cover stock", "specialty", "0.50"),
	supply("80 lb text paper", "specialty", "0.40"),
	supply("250 gsm cardstock", "specialty", "0.30"),
	supply("220 gsm poster paper", "specialty", "0.35"),
}

// Lookup returns the supply with the given item name.
func Lookup(itemName string) (Supply, bool) {
	for _, s := range PaperSupplies {
		if s.ItemName == itemName {
			return s, true
		}
	}
	return Supply{}, false
}

// referenceItem converts a supply to a reference inventory entry with the
// given stock baselines.
func (s Supply) referenceItem(currentStock, minStockLevel int64) ledger.ReferenceItem {
	return ledger.ReferenceItem{
		ItemName:      s.ItemName,
		Category:      s.Category,
		UnitPrice:     s.UnitPrice,
		CurrentStock:  currentStock,
		MinStockLevel: minStockLevel,
	}
}
