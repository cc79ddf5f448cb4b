/*
coordinator.go - Deterministic pipeline state machine

PURPOSE:
  Sequences capability calls per request, propagates accumulated context,
  applies the early-exit rule, and counts usage.

STATE MACHINE:
  START -> CLASSIFIED{INQUIRY|ORDER}
  INQUIRY: CLASSIFIED -> INVENTORY_ANSWERED (terminal, no ledger writes)
  ORDER:   CLASSIFIED -> INVENTORY_CHECKED
             -> ABORTED (terminal, when the inventory stage says stop)
             -> QUOTED -> FINALIZED -> INVOICED (terminal)

GUARANTEES:
  - Stages run strictly sequentially within one request; distinct requests
    are independent and may run concurrently (each owns its context)
  - Aborting skips Quoting/Sales/Invoicing entirely: they are not invoked
    and their usage counters do not move
  - Each completed capability call increments its counter exactly once
  - A capability error or timeout fails the whole request; no partial
    output is returned and no retry is attempted
  - A classification outside {INQUIRY, ORDER} is fatal, never defaulted

SEE ALSO:
  - capability.go: Stage contracts
  - toolset.go: Per-stage ledger access
*/
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
)

// Stage names, used for the context trail and usage counters.
const (
	StageClassifier = "classifier"
	StageInventory  = "inventory"
	StageQuoting    = "quoting"
	StageSales      = "sales"
	StageInvoice    = "invoice"
)

// State is the coordinator's position in the pipeline for one request.
type State string

const (
	StateStart             State = "START"
	StateClassified        State = "CLASSIFIED"
	StateInventoryAnswered State = "INVENTORY_ANSWERED"
	StateInventoryChecked  State = "INVENTORY_CHECKED"
	StateAborted           State = "ABORTED"
	StateQuoted            State = "QUOTED"
	StateFinalized         State = "FINALIZED"
	StateInvoiced          State = "INVOICED"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config carries the caller-level knobs.
type Config struct {
	// CapabilityTimeout bounds each capability call. Zero disables the
	// bound (the call still honors the request context).
	CapabilityTimeout time.Duration

	// BindingQuotes pins the recorded sale price to the quoted total when
	// the quoting stage produced one. Off by default: quotes are advisory
	// and the sales stage may reprice.
	BindingQuotes bool

	Logger zerolog.Logger
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator runs the request pipeline. Safe for concurrent use: all
// per-request state lives in the RequestContext, and the shared pieces
// (ledger, counters) synchronize themselves.
type Coordinator struct {
	caps     Capabilities
	writer   *ledger.Ledger
	queries  *ledger.QueryEngine
	reports  *ledger.ReportEngine
	history  quotes.History
	usage    *UsageCounters
	validate *validator.Validate
	cfg      Config
	log      zerolog.Logger
}

// NewCoordinator wires the pipeline. history may be nil when no quote
// archive is available; quote-history search then returns nothing.
func NewCoordinator(caps Capabilities, writer *ledger.Ledger, queries *ledger.QueryEngine,
	reports *ledger.ReportEngine, history quotes.History, cfg Config) *Coordinator {
	return &Coordinator{
		caps:     caps,
		writer:   writer,
		queries:  queries,
		reports:  reports,
		history:  history,
		usage:    NewUsageCounters(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// Usage returns a snapshot of the process-lifetime capability counters.
func (c *Coordinator) Usage() map[string]int {
	return c.usage.Snapshot()
}

// Run handles one customer request synchronously and returns the final
// response text: the inventory answer for inquiries and aborted orders,
// the invoice for completed orders.
func (c *Coordinator) Run(ctx context.Context, requestText string) (string, error) {
	rc := newRequestContext(requestText)
	log := c.log.With().Str("request_id", rc.RequestID).Logger()
	log.Info().Str("state", string(StateStart)).Msg("handling request")

	// Stage 1: classify.
	classified, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (ClassifierResult, error) {
		return c.caps.Classifier.Classify(ctx, ClassifierInput{Request: requestText})
	})
	if err != nil {
		return "", c.fail(log, StageClassifier, err)
	}
	if err := c.checkOutput(StageClassifier, classified); err != nil {
		return "", err
	}
	if !classified.Classification.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassification, classified.Classification)
	}
	c.usage.increment(StageClassifier)
	rc.appendStage(StageClassifier, string(classified.Classification))
	log.Info().Str("state", string(StateClassified)).
		Str("classification", string(classified.Classification)).Msg("request classified")

	if classified.Classification == ClassInquiry {
		return c.runInquiry(ctx, rc, log)
	}
	return c.runOrder(ctx, rc, log)
}

// runInquiry answers an information request. The inventory stage is the
// only capability invoked, with read-only tools: this branch never mutates
// the ledger.
func (c *Coordinator) runInquiry(ctx context.Context, rc *RequestContext, log zerolog.Logger) (string, error) {
	tools := &inventoryToolset{queries: c.queries, writer: c.writer, readOnly: true}

	decision, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (InventoryResult, error) {
		return c.caps.Inventory.Decide(ctx, InventoryInput{
			Classification: ClassInquiry,
			Request:        rc.OriginalRequest,
			Tools:          tools,
		})
	})
	if err != nil {
		return "", c.fail(log, StageInventory, err)
	}
	if err := c.checkOutput(StageInventory, decision); err != nil {
		return "", err
	}
	c.usage.increment(StageInventory)
	rc.appendStage(StageInventory, decision.Answer)

	log.Info().Str("state", string(StateInventoryAnswered)).Msg("inquiry answered")
	return decision.Answer, nil
}

// runOrder drives the full order pipeline, aborting after the inventory
// stage when it declines to proceed.
func (c *Coordinator) runOrder(ctx context.Context, rc *RequestContext, log zerolog.Logger) (string, error) {
	// Stage 2: inventory decision (may restock).
	invTools := &inventoryToolset{queries: c.queries, writer: c.writer}
	decision, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (InventoryResult, error) {
		return c.caps.Inventory.Decide(ctx, InventoryInput{
			Classification: ClassOrder,
			Request:        rc.OriginalRequest,
			Tools:          invTools,
		})
	})
	if err != nil {
		return "", c.fail(log, StageInventory, err)
	}
	if err := c.checkOutput(StageInventory, decision); err != nil {
		return "", err
	}
	c.usage.increment(StageInventory)
	rc.appendStage(StageInventory, decision.Answer)
	log.Info().Str("state", string(StateInventoryChecked)).Bool("proceed", decision.Proceed).Msg("inventory checked")

	// Early exit: the inventory answer is returned verbatim and the
	// remaining stages are never invoked.
	if !decision.Proceed {
		log.Info().Str("state", string(StateAborted)).Msg("order aborted")
		return decision.Answer, nil
	}

	// Stage 3: quoting.
	quoteTools := &quotingToolset{reports: c.reports, history: c.history}
	quoted, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (QuoteResult, error) {
		return c.caps.Quoter.Quote(ctx, QuoteInput{
			Request:         rc.OriginalRequest,
			InventoryAnswer: decision.Answer,
			Tools:           quoteTools,
		})
	})
	if err != nil {
		return "", c.fail(log, StageQuoting, err)
	}
	if err := c.checkOutput(StageQuoting, quoted); err != nil {
		return "", err
	}
	c.usage.increment(StageQuoting)
	rc.appendStage(StageQuoting, quoted.Quote)
	log.Info().Str("state", string(StateQuoted)).Msg("quote produced")
	c.archiveQuote(ctx, rc, quoted, log)

	// Stage 4: sales finalization (records the sale).
	salesTools := &salesToolset{writer: c.writer, binding: c.cfg.BindingQuotes, quotedTotal: quoted.Total}
	finalized, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (SalesResult, error) {
		return c.caps.Sales.Finalize(ctx, SalesInput{
			Request:         rc.OriginalRequest,
			InventoryAnswer: decision.Answer,
			Quote:           quoted.Quote,
			QuotedTotal:     quoted.Total,
			Tools:           salesTools,
		})
	})
	if err != nil {
		return "", c.fail(log, StageSales, err)
	}
	if err := c.checkOutput(StageSales, finalized); err != nil {
		return "", err
	}
	c.usage.increment(StageSales)
	rc.appendStage(StageSales, finalized.Confirmation)
	log.Info().Str("state", string(StateFinalized)).Msg("sale finalized")

	// Stage 5: invoicing, from the full accumulated context.
	invoiced, err := invoke(ctx, c.cfg.CapabilityTimeout, func(ctx context.Context) (InvoiceResult, error) {
		return c.caps.Invoicer.Invoice(ctx, InvoiceInput{
			Request: rc.OriginalRequest,
			Trail:   rc.Trail(),
		})
	})
	if err != nil {
		return "", c.fail(log, StageInvoice, err)
	}
	if err := c.checkOutput(StageInvoice, invoiced); err != nil {
		return "", err
	}
	c.usage.increment(StageInvoice)
	rc.appendStage(StageInvoice, invoiced.Invoice)

	log.Info().Str("state", string(StateInvoiced)).Msg("order invoiced")
	return invoiced.Invoice, nil
}

// archiveQuote records the produced quote into history. Best effort: a
// failing archive never fails the request.
func (c *Coordinator) archiveQuote(ctx context.Context, rc *RequestContext, quoted QuoteResult, log zerolog.Logger) {
	if c.history == nil {
		return
	}
	err := c.history.Record(ctx, quotes.Quote{
		OriginalRequest: rc.OriginalRequest,
		TotalAmount:     quoted.Total,
		Explanation:     quoted.Quote,
		OrderDate:       ledger.Today(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to archive quote")
	}
}

// checkOutput validates a capability's output against its schema before it
// enters the context trail.
func (c *Coordinator) checkOutput(stage string, out any) error {
	if err := c.validate.Struct(out); err != nil {
		return &StageError{Stage: stage, Err: fmt.Errorf("%w: invalid output: %v", ErrCapabilityFailed, err)}
	}
	return nil
}

func (c *Coordinator) fail(log zerolog.Logger, stage string, err error) error {
	log.Error().Err(err).Str("stage", stage).Msg("stage failed")
	return &StageError{Stage: stage, Err: err}
}

// invoke runs one capability call, bounding it with the configured timeout.
// The call runs in its own goroutine so a stage that ignores cancellation
// cannot hold the request past its deadline.
func invoke[R any](ctx context.Context, timeout time.Duration, fn func(context.Context) (R, error)) (R, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		out R
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		out, err := fn(ctx)
		ch <- outcome{out: out, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			var zero R
			return zero, fmt.Errorf("%w: %v", ErrCapabilityFailed, o.err)
		}
		return o.out, nil
	case <-ctx.Done():
		var zero R
		return zero, fmt.Errorf("%w: %v", ErrCapabilityTimeout, ctx.Err())
	}
}
