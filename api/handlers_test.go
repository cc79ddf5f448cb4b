package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difflin/supply-engine/api"
	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/ledger/store"
	"github.com/difflin/supply-engine/quotes"
	"github.com/difflin/supply-engine/rulebased"
	"github.com/difflin/supply-engine/workflow"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	router  http.Handler
	mem     *store.Memory
	history *quotes.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := store.NewMemory()
	writer := ledger.NewLedger(mem)
	queries := ledger.NewQueryEngine(mem)
	reports := ledger.NewReportEngine(queries, mem, mem)
	history := quotes.NewMemory()

	coord := workflow.NewCoordinator(rulebased.Capabilities(), writer, queries, reports, history, workflow.Config{
		Logger: zerolog.Nop(),
	})
	handler := api.NewHandler(coord, queries, reports, writer, history)

	return &testServer{
		router:  api.NewRouter(handler),
		mem:     mem,
		history: history,
	}
}

func (s *testServer) seedStock(t *testing.T, item string, units int64, cost string, date string) {
	t.Helper()
	d, err := ledger.ParseDate(date)
	require.NoError(t, err)
	_, err = ledger.NewLedger(s.mem).Append(context.Background(),
		ledger.StockOrder(item, units, decimal.RequireFromString(cost), d))
	require.NoError(t, err)
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// =============================================================================
// PIPELINE ENDPOINT
// =============================================================================

func TestAPI_SubmitRequest_OrderEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	srv.seedStock(t, "A4 paper", 800, "40.00", "2025-01-01")

	rec := srv.postJSON(t, "/api/requests", map[string]string{
		"request": "I would like to order 200 sheets of A4 paper on 2025-01-10",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Contains(t, resp["response"], "INVOICE")

	// The sale landed in the ledger.
	stockRec := srv.get(t, "/api/stock?item=A4+paper&as_of=2025-01-10")
	require.Equal(t, http.StatusOK, stockRec.Code)
	stock := decode[map[string]any](t, stockRec)
	assert.Equal(t, float64(600), stock["net_stock"])
}

func TestAPI_SubmitRequest_EmptyBody(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON(t, "/api/requests", map[string]string{"request": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Usage_ReflectsPipelineRuns(t *testing.T) {
	srv := newTestServer(t)
	srv.seedStock(t, "A4 paper", 800, "40.00", "2025-01-01")

	rec := srv.postJSON(t, "/api/requests", map[string]string{
		"request": "How much A4 paper do you have?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	usage := decode[map[string]int](t, srv.get(t, "/api/usage"))
	assert.Equal(t, 1, usage["classifier"])
	assert.Equal(t, 1, usage["inventory"])
	assert.Zero(t, usage["quoting"])
}

// =============================================================================
// LEDGER ENDPOINTS
// =============================================================================

func TestAPI_GetStock_RequiresItem(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.get(t, "/api/stock?as_of=2025-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetStock_MalformedDate(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.get(t, "/api/stock?item=A4+paper&as_of=tomorrow")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetCash(t *testing.T) {
	srv := newTestServer(t)
	srv.seedStock(t, "A4 paper", 1000, "50.00", "2025-01-01")

	resp := decode[map[string]string](t, srv.get(t, "/api/cash?as_of=2025-01-05"))
	assert.Equal(t, "-50.00", resp["balance"])
}

func TestAPI_GetInventory(t *testing.T) {
	srv := newTestServer(t)
	srv.seedStock(t, "Cardstock", 200, "30.00", "2025-01-01")

	rec := srv.get(t, "/api/inventory?as_of=2025-01-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AsOf  string           `json:"as_of"`
		Items map[string]int64 `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2025-01-02", resp.AsOf)
	assert.Equal(t, map[string]int64{"Cardstock": 200}, resp.Items)
}

func TestAPI_ListTransactions(t *testing.T) {
	srv := newTestServer(t)
	srv.seedStock(t, "A4 paper", 1000, "50.00", "2025-01-01")

	rec := srv.get(t, "/api/transactions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		ID    int64  `json:"id"`
		Type  string `json:"transaction_type"`
		Price string `json:"price"`
		Date  string `json:"transaction_date"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(1), resp[0].ID)
	assert.Equal(t, "stock_orders", resp[0].Type)
	assert.Equal(t, "50.00", resp[0].Price)
	assert.Equal(t, "2025-01-01", resp[0].Date)
}

func TestAPI_DeliveryEstimate(t *testing.T) {
	srv := newTestServer(t)

	resp := decode[map[string]any](t, srv.get(t, "/api/delivery-estimate?date=2025-06-01&quantity=101"))
	assert.Equal(t, "2025-06-05", resp["estimated_date"])
}

func TestAPI_DeliveryEstimate_BadQuantity(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/api/delivery-estimate?quantity=0").Code)
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/api/delivery-estimate?quantity=lots").Code)
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

func TestAPI_SearchQuotes(t *testing.T) {
	srv := newTestServer(t)
	d, _ := ledger.ParseDate("2025-01-10")
	require.NoError(t, srv.history.Record(context.Background(), quotes.Quote{
		OriginalRequest: "napkins for a birthday party",
		TotalAmount:     decimal.RequireFromString("42.00"),
		Explanation:     "bulk pricing",
		OrderDate:       d,
	}))

	rec := srv.get(t, "/api/quotes/search?q=napkins+party")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		OriginalRequest string `json:"original_request"`
		TotalAmount     string `json:"total_amount"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "42.00", resp[0].TotalAmount)
}

func TestAPI_SearchQuotes_RequiresTerms(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, srv.get(t, "/api/quotes/search").Code)
}
