package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
	"github.com/difflin/supply-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func TestStore_Append_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Append(ctx, ledger.StockOrder("A4 paper", 1000, money("50.00"), ledger.NewDate(2025, 1, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	recs, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "A4 paper", rec.Item())
	assert.Equal(t, ledger.TxStockOrder, rec.Type)
	assert.Equal(t, int64(1000), rec.UnitCount())
	assert.True(t, rec.Price.Equal(money("50.00")))
	assert.Equal(t, "2025-01-01", rec.Date.String())
}

func TestStore_Append_ItemlessCashMovement(t *testing.T) {
	// NULL item and units survive the round trip as nils.
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, ledger.CashMovement(ledger.TxSale, money("50000.00"), ledger.NewDate(2025, 1, 1)))
	require.NoError(t, err)

	recs, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].ItemName)
	assert.Nil(t, recs[0].Units)
}

func TestStore_Append_RejectsUnknownTypeAtSchemaLevel(t *testing.T) {
	// The CHECK constraint is the last line of defense under the ledger's
	// own validation.
	store := newTestStore(t)

	rec := ledger.StockOrder("A4 paper", 10, money("0.50"), ledger.NewDate(2025, 1, 1))
	rec.Type = "refund"

	_, err := store.Append(context.Background(), rec)
	assert.Error(t, err)
}

func TestStore_Through_DateRangeIsInclusive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, ledger.StockOrder("A4 paper", 1000, money("50.00"), ledger.NewDate(2025, 1, 1)))
	require.NoError(t, err)
	_, err = store.Append(ctx, ledger.Sale("A4 paper", 200, money("40.00"), ledger.NewDate(2025, 1, 10)))
	require.NoError(t, err)

	recs, err := store.Through(ctx, ledger.NewDate(2025, 1, 9))
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = store.Through(ctx, ledger.NewDate(2025, 1, 10))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestStore_All_ChronologicalAcrossInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Inserted newest first; reads must come back oldest first.
	_, err := store.Append(ctx, ledger.Sale("Cardstock", 10, money("3.00"), ledger.NewDate(2025, 3, 1)))
	require.NoError(t, err)
	_, err = store.Append(ctx, ledger.StockOrder("Cardstock", 50, money("7.50"), ledger.NewDate(2025, 1, 1)))
	require.NoError(t, err)
	_, err = store.Append(ctx, ledger.StockOrder("Cardstock", 20, money("3.00"), ledger.NewDate(2025, 2, 1)))
	require.NoError(t, err)

	recs, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2025-01-01", recs[0].Date.String())
	assert.Equal(t, "2025-02-01", recs[1].Date.String())
	assert.Equal(t, "2025-03-01", recs[2].Date.String())
}

func TestStore_Append_ConcurrentIDsUniqueAndSequential(t *testing.T) {
	// GIVEN: 50 goroutines appending concurrently
	// WHEN: All appends complete
	// THEN: Every id is unique and the set is exactly 1..50

	store := newTestStore(t)
	ctx := context.Background()
	day := ledger.NewDate(2025, 5, 1)

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Append(ctx, ledger.Sale("Envelopes", 1, money("0.08"), day))
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "missing id %d", want)
	}
}

// =============================================================================
// REFERENCE INVENTORY
// =============================================================================

func TestStore_ReferenceItems_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seeded, err := store.HasReferenceItems(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	items := []ledger.ReferenceItem{
		{ItemName: "A4 paper", Category: "paper", UnitPrice: money("0.05"), CurrentStock: 500, MinStockLevel: 100},
		{ItemName: "Paper cups", Category: "product", UnitPrice: money("0.08"), CurrentStock: 300, MinStockLevel: 60},
	}
	require.NoError(t, store.SaveReferenceItems(ctx, items))

	seeded, err = store.HasReferenceItems(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	got, err := store.ReferenceItems(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, items, got)
}

func TestStore_SaveReferenceItems_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []ledger.ReferenceItem{{ItemName: "A4 paper", Category: "paper", UnitPrice: money("0.05"), CurrentStock: 500, MinStockLevel: 100}}
	require.NoError(t, store.SaveReferenceItems(ctx, first))

	second := []ledger.ReferenceItem{{ItemName: "Cardstock", Category: "paper", UnitPrice: money("0.15"), CurrentStock: 200, MinStockLevel: 50}}
	require.NoError(t, store.SaveReferenceItems(ctx, second))

	got, err := store.ReferenceItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cardstock", got[0].ItemName)
}

// =============================================================================
// QUOTE HISTORY
// =============================================================================

func archiveQuote(t *testing.T, store *sqlite.Store, request, explanation, date string) {
	t.Helper()
	d, err := ledger.ParseDate(date)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), quotes.Quote{
		OriginalRequest: request,
		TotalAmount:     money("120.00"),
		Explanation:     explanation,
		OrderDate:       d,
	}))
}

func TestStore_SearchQuotes_AllTermsAcrossBothFields(t *testing.T) {
	store := newTestStore(t)

	archiveQuote(t, store, "napkins for a birthday party", "bulk pricing", "2025-01-10")
	archiveQuote(t, store, "napkins for the office", "standard pricing", "2025-01-12")

	found, err := store.Search(context.Background(), []string{"napkins", "party"}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "napkins for a birthday party", found[0].OriginalRequest)

	// A term matching only the explanation still counts.
	found, err = store.Search(context.Background(), []string{"office", "standard"}, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestStore_SearchQuotes_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	archiveQuote(t, store, "Glossy Paper for flyers", "", "2025-01-10")

	found, err := store.Search(context.Background(), []string{"GLOSSY"}, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestStore_SearchQuotes_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)

	archiveQuote(t, store, "cardstock order january", "", "2025-01-05")
	archiveQuote(t, store, "cardstock order march", "", "2025-03-01")
	archiveQuote(t, store, "cardstock order february", "", "2025-02-10")

	found, err := store.Search(context.Background(), []string{"cardstock"}, 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "cardstock order march", found[0].OriginalRequest)
	assert.Equal(t, "cardstock order february", found[1].OriginalRequest)
}

func TestStore_SearchQuotes_DefaultLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < quotes.DefaultSearchLimit+2; i++ {
		archiveQuote(t, store, "poster order", "", "2025-01-10")
	}

	found, err := store.Search(context.Background(), []string{"poster"}, 0)
	require.NoError(t, err)
	assert.Len(t, found, quotes.DefaultSearchLimit)
}
