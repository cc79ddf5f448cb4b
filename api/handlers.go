/*
handlers.go - HTTP API handlers for the supply engine

PURPOSE:
  Exposes the ledger, reporting, quote history, and request pipeline via
  REST. Handles HTTP request/response, JSON serialization, and delegates
  to domain logic.

ENDPOINTS:
  Pipeline:
    POST   /api/requests            Run one customer request end to end

  Ledger:
    GET    /api/report              Financial report as of a date
    GET    /api/inventory           All items with positive stock
    GET    /api/stock               One item's net stock
    GET    /api/cash                Cash balance
    GET    /api/transactions        Raw ledger, chronological
    GET    /api/delivery-estimate   Delivery date for a quantity

  Quotes:
    GET    /api/quotes/search       Keyword search over past quotes

  Usage:
    GET    /api/usage               Capability invocation counters

DATE PARAMETER:
  Read endpoints accept ?as_of=YYYY-MM-DD and default to today. The bound
  is inclusive.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 422: Pipeline rejected the request (bad classification, stage failure)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
	"github.com/difflin/supply-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Coordinator *workflow.Coordinator
	Queries     *ledger.QueryEngine
	Reports     *ledger.ReportEngine
	Ledger      *ledger.Ledger
	History     quotes.History
}

// NewHandler creates a new handler over the wired engines.
func NewHandler(coord *workflow.Coordinator, queries *ledger.QueryEngine,
	reports *ledger.ReportEngine, l *ledger.Ledger, history quotes.History) *Handler {
	return &Handler{
		Coordinator: coord,
		Queries:     queries,
		Reports:     reports,
		Ledger:      l,
		History:     history,
	}
}

// =============================================================================
// PIPELINE HANDLERS
// =============================================================================

// SubmitRequest runs a customer request through the pipeline.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(body.Request) == "" {
		writeError(w, http.StatusBadRequest, "Request text is required", nil)
		return
	}

	response, err := h.Coordinator.Run(r.Context(), body.Request)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Request could not be handled", err)
		return
	}

	writeJSON(w, http.StatusOK, RequestResponseDTO{
		Request:  body.Request,
		Response: response,
	})
}

// GetUsage returns the process-lifetime capability counters.
// GET /api/usage
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Coordinator.Usage())
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetReport returns the financial report as of a date.
// GET /api/report?as_of=YYYY-MM-DD
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(h.Reports.Report(r.Context(), asOf)))
}

// GetInventory returns every item with positive net stock.
// GET /api/inventory?as_of=YYYY-MM-DD
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(w, r)
	if !ok {
		return
	}
	items := h.Queries.AllPositiveStock(r.Context(), asOf)
	if items == nil {
		items = map[string]int64{}
	}
	writeJSON(w, http.StatusOK, InventoryDTO{AsOf: asOf.String(), Items: items})
}

// GetStock returns one item's net stock.
// GET /api/stock?item=A4+paper&as_of=YYYY-MM-DD
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")
	if item == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'item' is required", nil)
		return
	}
	asOf, ok := asOfParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, StockDTO{
		ItemName: item,
		AsOf:     asOf.String(),
		NetStock: h.Queries.NetStock(r.Context(), item, asOf),
	})
}

// GetCash returns the cash balance as of a date.
// GET /api/cash?as_of=YYYY-MM-DD
func (h *Handler) GetCash(w http.ResponseWriter, r *http.Request) {
	asOf, ok := asOfParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CashDTO{
		AsOf:    asOf.String(),
		Balance: h.Queries.CashBalance(r.Context(), asOf).StringFixed(2),
	})
}

// ListTransactions returns the full ledger in chronological order.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Ledger.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toTransactionDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDeliveryEstimate returns the estimated delivery date for a quantity.
// GET /api/delivery-estimate?date=YYYY-MM-DD&quantity=N
func (h *Handler) GetDeliveryEstimate(w http.ResponseWriter, r *http.Request) {
	baseDate := r.URL.Query().Get("date")
	if baseDate == "" {
		baseDate = ledger.Today().String()
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Query parameter 'quantity' must be a positive integer", err)
		return
	}

	writeJSON(w, http.StatusOK, DeliveryEstimateDTO{
		BaseDate:      baseDate,
		Quantity:      quantity,
		EstimatedDate: ledger.EstimateDelivery(baseDate, quantity).String(),
	})
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// SearchQuotes searches the quote archive.
// GET /api/quotes/search?q=party+napkins&limit=5
func (h *Handler) SearchQuotes(w http.ResponseWriter, r *http.Request) {
	terms := strings.Fields(r.URL.Query().Get("q"))
	if len(terms) == 0 {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Query parameter 'limit' must be a positive integer", err)
			return
		}
		limit = n
	}

	found, err := h.History.Search(r.Context(), terms, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Quote search failed", err)
		return
	}

	dtos := make([]QuoteDTO, len(found))
	for i, q := range found {
		dtos[i] = toQuoteDTO(q)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// asOfParam parses ?as_of=, defaulting to today. Writes the 400 itself and
// returns ok=false on a malformed date.
func asOfParam(w http.ResponseWriter, r *http.Request) (ledger.Date, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return ledger.Today(), true
	}
	d, err := ledger.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Query parameter 'as_of' must be YYYY-MM-DD", err)
		return ledger.Date{}, false
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
