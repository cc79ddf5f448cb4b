/*
capabilities.go - Rule-driven implementations of the five pipeline stages

PURPOSE:
  One small type per stage contract. The rules are intentionally plain:
  keyword classification, catalog-priced quotes with a bulk discount, and
  restock-on-shortfall inventory decisions. Every decision is a pure
  function of the request text, the catalog, and the ledger state.

PRICING RULES:
  - Sale price is the catalog unit price with a fixed markup
  - Orders of 500+ units get 5% off, 1000+ units 10% off
  - The stock order that covers a shortfall is priced at catalog cost

SEE ALSO:
  - workflow/capability.go: The contracts implemented here
*/
package rulebased

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/difflin/supply-engine/workflow"
)

var (
	markup          = decimal.RequireFromString("1.5")
	bulkDiscount    = decimal.RequireFromString("0.95") // 500+ units
	volumeDiscount  = decimal.RequireFromString("0.90") // 1000+ units
	bulkThreshold   = int64(500)
	volumeThreshold = int64(1000)
)

// Capabilities returns the full rule-based stage bundle.
func Capabilities() workflow.Capabilities {
	return workflow.Capabilities{
		Classifier: classifier{},
		Inventory:  inventoryDecider{},
		Quoter:     quoter{},
		Sales:      salesFinalizer{},
		Invoicer:   invoicer{},
	}
}

// =============================================================================
// CLASSIFIER
// =============================================================================

var orderKeywords = []string{
	"order", "buy", "purchase", "would like", "i need", "we need",
	"deliver", "send us", "send me", "get us", "get me",
}

type classifier struct{}

// Classify treats a request as an order when it uses purchase language and
// names a quantity; everything else is an inquiry.
func (classifier) Classify(_ context.Context, in workflow.ClassifierInput) (workflow.ClassifierResult, error) {
	lower := strings.ToLower(in.Request)
	p := parseRequest(in.Request)

	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) && p.Quantity > 0 {
			return workflow.ClassifierResult{Classification: workflow.ClassOrder}, nil
		}
	}
	return workflow.ClassifierResult{Classification: workflow.ClassInquiry}, nil
}

// =============================================================================
// INVENTORY DECIDER
// =============================================================================

type inventoryDecider struct{}

func (inventoryDecider) Decide(ctx context.Context, in workflow.InventoryInput) (workflow.InventoryResult, error) {
	p := parseRequest(in.Request)

	if in.Classification == workflow.ClassInquiry {
		return answerInquiry(ctx, in, p), nil
	}
	return decideOrder(ctx, in, p)
}

// answerInquiry reports stock levels. Read path only.
func answerInquiry(ctx context.Context, in workflow.InventoryInput, p parsedRequest) workflow.InventoryResult {
	if p.HasItem {
		stock := in.Tools.NetStock(ctx, p.Item.ItemName, p.Date)
		return workflow.InventoryResult{
			Answer: fmt.Sprintf("As of %s we have %d units of %s in stock.", p.Date, stock, p.Item.ItemName),
		}
	}

	stock := in.Tools.AllPositiveStock(ctx, p.Date)
	if len(stock) == 0 {
		return workflow.InventoryResult{
			Answer: fmt.Sprintf("As of %s we have no items in stock.", p.Date),
		}
	}

	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "As of %s we stock %d items:\n", p.Date, len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "  - %s: %d units\n", name, stock[name])
	}
	return workflow.InventoryResult{Answer: b.String()}
}

// decideOrder checks availability and restocks a shortfall at catalog cost.
func decideOrder(ctx context.Context, in workflow.InventoryInput, p parsedRequest) (workflow.InventoryResult, error) {
	if !p.HasItem {
		return workflow.InventoryResult{
			Answer:  "We could not match your request to a product we carry, so we cannot fulfill this order.",
			Proceed: false,
		}, nil
	}
	if p.Quantity <= 0 {
		return workflow.InventoryResult{
			Answer:  fmt.Sprintf("Your order for %s does not state a quantity, so we cannot fulfill it.", p.Item.ItemName),
			Proceed: false,
		}, nil
	}

	stock := in.Tools.NetStock(ctx, p.Item.ItemName, p.Date)
	if stock >= p.Quantity {
		return workflow.InventoryResult{
			Answer:  fmt.Sprintf("%d units of %s are in stock as of %s; your order for %d can be fulfilled.", stock, p.Item.ItemName, p.Date, p.Quantity),
			Proceed: true,
		}, nil
	}

	shortfall := p.Quantity - stock
	cost := p.Item.UnitPrice.Mul(decimal.NewFromInt(shortfall))
	if _, err := in.Tools.RecordRestock(ctx, p.Item.ItemName, shortfall, cost, p.Date); err != nil {
		return workflow.InventoryResult{}, fmt.Errorf("restocking %d units of %s: %w", shortfall, p.Item.ItemName, err)
	}
	arrival := in.Tools.EstimateDelivery(p.Date.String(), shortfall)

	return workflow.InventoryResult{
		Answer: fmt.Sprintf("%d units of %s are in stock as of %s; we ordered %d more (arriving %s) to cover your order of %d.",
			stock, p.Item.ItemName, p.Date, shortfall, arrival, p.Quantity),
		Proceed: true,
	}, nil
}

// =============================================================================
// QUOTER
// =============================================================================

type quoter struct{}

func (quoter) Quote(ctx context.Context, in workflow.QuoteInput) (workflow.QuoteResult, error) {
	p := parseRequest(in.Request)
	if !p.HasItem || p.Quantity <= 0 {
		return workflow.QuoteResult{}, fmt.Errorf("cannot price request %q", in.Request)
	}

	total := salePrice(p.Item.UnitPrice, p.Quantity)

	var b strings.Builder
	fmt.Fprintf(&b, "Quote for %d units of %s: $%s total", p.Quantity, p.Item.ItemName, total.StringFixed(2))
	switch {
	case p.Quantity >= volumeThreshold:
		b.WriteString(" (10% volume discount applied)")
	case p.Quantity >= bulkThreshold:
		b.WriteString(" (5% bulk discount applied)")
	}
	b.WriteString(".")

	// Past quotes for similar requests add context for the customer.
	terms := strings.Fields(strings.ToLower(p.Item.ItemName))
	if prior, err := in.Tools.SearchQuoteHistory(ctx, terms, 1); err == nil && len(prior) > 0 {
		fmt.Fprintf(&b, " A comparable past order on %s totaled $%s.",
			prior[0].OrderDate, prior[0].TotalAmount.StringFixed(2))
	}

	return workflow.QuoteResult{Quote: b.String(), Total: total}, nil
}

// salePrice applies the markup and quantity discounts, rounded to cents.
func salePrice(unitCost decimal.Decimal, quantity int64) decimal.Decimal {
	total := unitCost.Mul(markup).Mul(decimal.NewFromInt(quantity))
	switch {
	case quantity >= volumeThreshold:
		total = total.Mul(volumeDiscount)
	case quantity >= bulkThreshold:
		total = total.Mul(bulkDiscount)
	}
	return total.Round(2)
}

// =============================================================================
// SALES FINALIZER
// =============================================================================

type salesFinalizer struct{}

func (salesFinalizer) Finalize(ctx context.Context, in workflow.SalesInput) (workflow.SalesResult, error) {
	p := parseRequest(in.Request)
	if !p.HasItem || p.Quantity <= 0 {
		return workflow.SalesResult{}, fmt.Errorf("cannot finalize request %q", in.Request)
	}

	total := in.QuotedTotal
	if total.IsZero() {
		total = salePrice(p.Item.UnitPrice, p.Quantity)
	}

	if _, err := in.Tools.RecordSale(ctx, p.Item.ItemName, p.Quantity, total, p.Date); err != nil {
		return workflow.SalesResult{}, fmt.Errorf("recording sale of %d units of %s: %w", p.Quantity, p.Item.ItemName, err)
	}
	delivery := in.Tools.EstimateDelivery(p.Date.String(), p.Quantity)

	return workflow.SalesResult{
		Confirmation: fmt.Sprintf("Sale confirmed: %d units of %s for $%s, delivery by %s.",
			p.Quantity, p.Item.ItemName, total.StringFixed(2), delivery),
	}, nil
}

// =============================================================================
// INVOICER
// =============================================================================

type invoicer struct{}

func (invoicer) Invoice(_ context.Context, in workflow.InvoiceInput) (workflow.InvoiceResult, error) {
	var b strings.Builder
	b.WriteString("INVOICE\n")
	fmt.Fprintf(&b, "Request: %s\n", in.Request)
	for _, stage := range in.Trail {
		fmt.Fprintf(&b, "[%s] %s\n", stage.Stage, strings.TrimRight(stage.Output, "\n"))
	}
	return workflow.InvoiceResult{Invoice: b.String()}, nil
}
