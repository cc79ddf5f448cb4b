/*
Package workflow provides the deterministic request-handling pipeline.

PURPOSE:
  A customer request flows through a fixed sequence of decision-making
  stages: classification, inventory decision, quoting, sales finalization,
  invoicing. How each stage derives its output is external to this package
  (in production, a language model); the pipeline only guarantees correct
  sequencing, context propagation, early exit, and usage accounting.

KEY CONCEPTS IN THIS FILE (capability.go):
  - Capability contracts: one interface per pipeline stage with typed
    input/output structs, validated at the boundary
  - Tool permission sets: each stage receives a narrow interface exposing
    only the reads/writes its role allows (see toolset.go)

SEE ALSO:
  - coordinator.go: The state machine that sequences these stages
  - toolset.go: Tool interface implementations backed by the ledger
*/
package workflow

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classification is the classifier's verdict on a customer request.
type Classification string

const (
	ClassInquiry Classification = "INQUIRY"
	ClassOrder   Classification = "ORDER"
)

// Valid reports whether c is one of the two recognized classifications.
// Anything else is a fatal coordinator error, never silently defaulted.
func (c Classification) Valid() bool {
	return c == ClassInquiry || c == ClassOrder
}

// =============================================================================
// CAPABILITY CONTRACTS - one interface per stage
// =============================================================================

// ClassifierInput carries the raw customer request. The classifier has no
// tool access.
type ClassifierInput struct {
	Request string
}

type ClassifierResult struct {
	Classification Classification `validate:"required"`
}

// Classifier decides whether a request is an information inquiry or a
// purchase order.
type Classifier interface {
	Classify(ctx context.Context, in ClassifierInput) (ClassifierResult, error)
}

// InventoryInput carries the classification and request text plus the
// inventory tool set. On the INQUIRY branch the tools are read-only:
// RecordRestock fails with ErrLedgerWriteNotAllowed.
type InventoryInput struct {
	Classification Classification
	Request        string
	Tools          InventoryTools
}

type InventoryResult struct {
	Answer string `validate:"required"`
	// Proceed gates the rest of the ORDER pipeline. False means the
	// coordinator aborts and returns Answer verbatim.
	Proceed bool
}

// InventoryDecider checks stock, optionally restocks, and decides whether
// an order can move forward.
type InventoryDecider interface {
	Decide(ctx context.Context, in InventoryInput) (InventoryResult, error)
}

// QuoteInput carries the request and the inventory stage's answer plus the
// quoting tool set (reporting and quote-history search, both read-only).
type QuoteInput struct {
	Request         string
	InventoryAnswer string
	Tools           QuotingTools
}

type QuoteResult struct {
	Quote string `validate:"required"`
	// Total is the quoted amount when the capability computed one.
	// A zero Total means the quote text carries no machine-readable price.
	Total decimal.Decimal
}

// Quoter produces a sales quote for an order that inventory cleared.
type Quoter interface {
	Quote(ctx context.Context, in QuoteInput) (QuoteResult, error)
}

// SalesInput carries the accumulated order context plus the sales tool set
// (delivery estimation and sale recording).
type SalesInput struct {
	Request         string
	InventoryAnswer string
	Quote           string
	// QuotedTotal mirrors QuoteResult.Total. Under binding-quote
	// configuration, RecordSale rejects a price that deviates from it.
	QuotedTotal decimal.Decimal
	Tools       SalesTools
}

type SalesResult struct {
	Confirmation string `validate:"required"`
}

// SalesFinalizer records the sale and confirms the order to the customer.
type SalesFinalizer interface {
	Finalize(ctx context.Context, in SalesInput) (SalesResult, error)
}

// InvoiceInput carries everything accumulated so far: the original request
// and every prior stage's output, in order. The invoicer has no tool access.
type InvoiceInput struct {
	Request string
	Trail   []StageOutput
}

type InvoiceResult struct {
	Invoice string `validate:"required"`
}

// Invoicer composes the customer invoice from the full pipeline context.
type Invoicer interface {
	Invoice(ctx context.Context, in InvoiceInput) (InvoiceResult, error)
}

// Capabilities bundles one implementation per stage.
type Capabilities struct {
	Classifier Classifier
	Inventory  InventoryDecider
	Quoter     Quoter
	Sales      SalesFinalizer
	Invoicer   Invoicer
}
