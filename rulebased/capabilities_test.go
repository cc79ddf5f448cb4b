package rulebased_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/ledger/store"
	"github.com/difflin/supply-engine/quotes"
	"github.com/difflin/supply-engine/rulebased"
	"github.com/difflin/supply-engine/workflow"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newPipeline wires the rule-based capabilities into a coordinator over a
// fresh in-memory ledger with a known stock position.
func newPipeline(t *testing.T) (*workflow.Coordinator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	writer := ledger.NewLedger(mem)
	queries := ledger.NewQueryEngine(mem)
	reports := ledger.NewReportEngine(queries, mem, mem)

	coord := workflow.NewCoordinator(rulebased.Capabilities(), writer, queries, reports, quotes.NewMemory(), workflow.Config{
		Logger: zerolog.Nop(),
	})
	return coord, mem
}

func stock(t *testing.T, mem *store.Memory, item string, units int64, cost string, date ledger.Date) {
	t.Helper()
	_, err := ledger.NewLedger(mem).Append(context.Background(),
		ledger.StockOrder(item, units, decimal.RequireFromString(cost), date))
	require.NoError(t, err)
}

// =============================================================================
// CLASSIFIER
// =============================================================================

func TestClassifier_OrderLanguageWithQuantity(t *testing.T) {
	caps := rulebased.Capabilities()
	ctx := context.Background()

	cases := []struct {
		request string
		want    workflow.Classification
	}{
		{"I would like to order 500 sheets of A4 paper", workflow.ClassOrder},
		{"Please send us 200 paper cups for 2025-04-01", workflow.ClassOrder},
		{"We need 1000 napkins", workflow.ClassOrder},
		{"How much A4 paper do you have in stock?", workflow.ClassInquiry},
		{"Do you carry glossy paper?", workflow.ClassInquiry},
		// Purchase language without a quantity stays an inquiry.
		{"I would like to order some cardstock", workflow.ClassInquiry},
	}

	for _, tc := range cases {
		got, err := caps.Classifier.Classify(ctx, workflow.ClassifierInput{Request: tc.request})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Classification, "request %q", tc.request)
	}
}

// =============================================================================
// END TO END: INQUIRY
// =============================================================================

func TestPipeline_Inquiry_SingleItemStock(t *testing.T) {
	coord, mem := newPipeline(t)
	stock(t, mem, "A4 paper", 800, "40.00", ledger.NewDate(2025, 1, 1))

	out, err := coord.Run(context.Background(), "How much A4 paper do you have on 2025-01-15?")

	require.NoError(t, err)
	assert.Contains(t, out, "800 units")
	assert.Contains(t, out, "A4 paper")
	assert.Equal(t, 1, ledgerLen(t, mem), "inquiries must not write to the ledger")
}

func TestPipeline_Inquiry_FullInventoryListing(t *testing.T) {
	coord, mem := newPipeline(t)
	day := ledger.NewDate(2025, 1, 1)
	stock(t, mem, "Cardstock", 200, "30.00", day)
	stock(t, mem, "Paper cups", 300, "24.00", day)

	out, err := coord.Run(context.Background(), "What do you have in stock as of 2025-01-02?")

	require.NoError(t, err)
	assert.Contains(t, out, "Cardstock: 200")
	assert.Contains(t, out, "Paper cups: 300")
}

// =============================================================================
// END TO END: ORDER
// =============================================================================

func TestPipeline_Order_FulfilledFromStock(t *testing.T) {
	// GIVEN: 800 units of A4 paper on hand
	// WHEN: Ordering 200
	// THEN: An invoice comes back and the ledger gains exactly one sale

	coord, mem := newPipeline(t)
	stock(t, mem, "A4 paper", 800, "40.00", ledger.NewDate(2025, 1, 1))

	out, err := coord.Run(context.Background(), "I would like to order 200 sheets of A4 paper on 2025-01-10")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "INVOICE"))

	recs, err := mem.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	sale := recs[1]
	assert.Equal(t, ledger.TxSale, sale.Type)
	assert.Equal(t, "A4 paper", sale.Item())
	assert.Equal(t, int64(200), sale.UnitCount())
	// 200 * 0.05 * 1.5 markup = 15.00, no discount below 500 units.
	assert.True(t, sale.Price.Equal(decimal.RequireFromString("15.00")), "price %s", sale.Price)

	queries := ledger.NewQueryEngine(mem)
	assert.Equal(t, int64(600), queries.NetStock(context.Background(), "A4 paper", ledger.NewDate(2025, 1, 10)))
}

func TestPipeline_Order_ShortfallTriggersRestock(t *testing.T) {
	// GIVEN: 100 units on hand, an order for 300
	// WHEN: Running the pipeline
	// THEN: A 200-unit stock order is appended before the sale

	coord, mem := newPipeline(t)
	stock(t, mem, "Cardstock", 100, "15.00", ledger.NewDate(2025, 1, 1))

	out, err := coord.Run(context.Background(), "Please send us 300 sheets of cardstock on 2025-02-01")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "INVOICE"))

	recs, err := mem.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	restock := recs[1]
	assert.Equal(t, ledger.TxStockOrder, restock.Type)
	assert.Equal(t, int64(200), restock.UnitCount())
	// 200 * 0.15 catalog cost.
	assert.True(t, restock.Price.Equal(decimal.RequireFromString("30.00")), "cost %s", restock.Price)

	assert.Equal(t, ledger.TxSale, recs[2].Type)
}

func TestPipeline_Order_UnknownItemAborts(t *testing.T) {
	coord, mem := newPipeline(t)

	out, err := coord.Run(context.Background(), "I would like to order 50 uranium rods")

	require.NoError(t, err)
	assert.Contains(t, out, "cannot fulfill")
	assert.Equal(t, 0, ledgerLen(t, mem))
	assert.Zero(t, coord.Usage()[workflow.StageQuoting])
}

func TestPipeline_Order_VolumeDiscountApplied(t *testing.T) {
	coord, mem := newPipeline(t)
	stock(t, mem, "A4 paper", 2000, "100.00", ledger.NewDate(2025, 1, 1))

	_, err := coord.Run(context.Background(), "I would like to order 1500 sheets of A4 paper on 2025-01-10")
	require.NoError(t, err)

	recs, err := mem.All(context.Background())
	require.NoError(t, err)
	sale := recs[len(recs)-1]
	// 1500 * 0.05 * 1.5 * 0.90 = 101.25
	assert.True(t, sale.Price.Equal(decimal.RequireFromString("101.25")), "price %s", sale.Price)
}

// =============================================================================
// HELPERS
// =============================================================================

func ledgerLen(t *testing.T, mem *store.Memory) int {
	t.Helper()
	recs, err := mem.All(context.Background())
	require.NoError(t, err)
	return len(recs)
}
