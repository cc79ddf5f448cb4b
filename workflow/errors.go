/*
errors.go - Centralized error types for the workflow pipeline

PURPOSE:
  A capability failure is fatal for the current request only: it is
  surfaced to the caller as one of these errors and never corrupts
  coordinator state for subsequent requests. The pipeline provides no
  automatic retry - retry policy is a caller-level concern.
*/
package workflow

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidClassification is returned when the classifier yields a
	// value outside {INQUIRY, ORDER}.
	ErrInvalidClassification = errors.New("invalid classification")

	// ErrCapabilityFailed is returned when a stage returns an error or
	// schema-invalid output.
	ErrCapabilityFailed = errors.New("capability failed")

	// ErrCapabilityTimeout is returned when a stage exceeds the configured
	// per-call timeout.
	ErrCapabilityTimeout = errors.New("capability timed out")

	// ErrLedgerWriteNotAllowed is returned when a stage attempts a ledger
	// write its branch forbids (any write on the INQUIRY branch).
	ErrLedgerWriteNotAllowed = errors.New("ledger write not allowed on this branch")

	// ErrQuoteBindingViolated is returned when binding quotes are
	// configured and the recorded sale price deviates from the quote.
	ErrQuoteBindingViolated = errors.New("sale price deviates from binding quote")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// StageError identifies which stage failed and why.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// QuoteMismatchError carries the quoted and recorded amounts.
type QuoteMismatchError struct {
	Quoted   decimal.Decimal
	Recorded decimal.Decimal
}

func (e *QuoteMismatchError) Error() string {
	return fmt.Sprintf("sale price %s deviates from binding quote %s", e.Recorded, e.Quoted)
}

func (e *QuoteMismatchError) Unwrap() error {
	return ErrQuoteBindingViolated
}
