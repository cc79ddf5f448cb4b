/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  All amounts are serialized as fixed two-decimal strings, never floats.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SubmitRequestDTO is the body for POST /api/requests.
type SubmitRequestDTO struct {
	Request string `json:"request"`
}

// RequestResponseDTO is the pipeline's final answer to a customer request.
type RequestResponseDTO struct {
	Request  string `json:"request"`
	Response string `json:"response"`
}

// TransactionDTO represents one ledger record.
type TransactionDTO struct {
	ID       int64   `json:"id"`
	ItemName *string `json:"item_name"`
	Type     string  `json:"transaction_type"`
	Units    *int64  `json:"units"`
	Price    string  `json:"price"`
	Date     string  `json:"transaction_date"`
}

// StockDTO answers a single-item stock query.
type StockDTO struct {
	ItemName string `json:"item_name"`
	AsOf     string `json:"as_of"`
	NetStock int64  `json:"net_stock"`
}

// InventoryDTO answers the all-items stock query.
type InventoryDTO struct {
	AsOf  string           `json:"as_of"`
	Items map[string]int64 `json:"items"`
}

// CashDTO answers the cash balance query.
type CashDTO struct {
	AsOf    string `json:"as_of"`
	Balance string `json:"balance"`
}

// ReportDTO is the point-in-time financial report.
type ReportDTO struct {
	AsOfDate           string             `json:"as_of_date"`
	CashBalance        string             `json:"cash_balance"`
	InventoryValue     string             `json:"inventory_value"`
	TotalAssets        string             `json:"total_assets"`
	InventorySummary   []InventoryLineDTO `json:"inventory_summary"`
	TopSellingProducts []ProductSalesDTO  `json:"top_selling_products"`
}

// InventoryLineDTO is one reference item's stock and valuation.
type InventoryLineDTO struct {
	ItemName  string `json:"item_name"`
	Stock     int64  `json:"stock"`
	UnitPrice string `json:"unit_price"`
	Value     string `json:"value"`
}

// ProductSalesDTO is one item's aggregated sales.
type ProductSalesDTO struct {
	ItemName     string `json:"item_name"`
	TotalUnits   int64  `json:"total_units"`
	TotalRevenue string `json:"total_revenue"`
}

// QuoteDTO represents one archived quote.
type QuoteDTO struct {
	OriginalRequest string `json:"original_request"`
	TotalAmount     string `json:"total_amount"`
	Explanation     string `json:"quote_explanation"`
	OrderDate       string `json:"order_date"`
}

// DeliveryEstimateDTO answers the delivery estimation query.
type DeliveryEstimateDTO struct {
	BaseDate      string `json:"base_date"`
	Quantity      int64  `json:"quantity"`
	EstimatedDate string `json:"estimated_date"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(rec ledger.TransactionRecord) TransactionDTO {
	return TransactionDTO{
		ID:       rec.ID,
		ItemName: rec.ItemName,
		Type:     string(rec.Type),
		Units:    rec.Units,
		Price:    rec.Price.StringFixed(2),
		Date:     rec.Date.String(),
	}
}

func toReportDTO(rep *ledger.FinancialReport) ReportDTO {
	dto := ReportDTO{
		AsOfDate:           rep.AsOfDate.String(),
		CashBalance:        rep.CashBalance.StringFixed(2),
		InventoryValue:     rep.InventoryValue.StringFixed(2),
		TotalAssets:        rep.TotalAssets.StringFixed(2),
		InventorySummary:   make([]InventoryLineDTO, len(rep.InventorySummary)),
		TopSellingProducts: make([]ProductSalesDTO, len(rep.TopSellingProducts)),
	}
	for i, line := range rep.InventorySummary {
		dto.InventorySummary[i] = InventoryLineDTO{
			ItemName:  line.ItemName,
			Stock:     line.Stock,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Value:     line.Value.StringFixed(2),
		}
	}
	for i, ps := range rep.TopSellingProducts {
		dto.TopSellingProducts[i] = ProductSalesDTO{
			ItemName:     ps.ItemName,
			TotalUnits:   ps.TotalUnits,
			TotalRevenue: ps.TotalRevenue.StringFixed(2),
		}
	}
	return dto
}

func toQuoteDTO(q quotes.Quote) QuoteDTO {
	return QuoteDTO{
		OriginalRequest: q.OriginalRequest,
		TotalAmount:     q.TotalAmount.StringFixed(2),
		Explanation:     q.Explanation,
		OrderDate:       q.OrderDate.String(),
	}
}
