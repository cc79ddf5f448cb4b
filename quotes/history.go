/*
Package quotes provides the historical quote archive.

PURPOSE:
  The quoting stage prices new requests partly by looking at what similar
  past jobs were quoted. This package defines the archive record, the
  search contract, and an in-memory implementation; the SQLite-backed
  implementation lives in store/sqlite.

SEARCH SEMANTICS:
  Case-insensitive substring match over the original request text and the
  quote explanation. Every term must match one of the two fields. Results
  come back newest first, capped by the limit (default 5).
*/
package quotes

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/difflin/supply-engine/ledger"
	"github.com/shopspring/decimal"
)

// DefaultSearchLimit caps Search results when the caller passes limit <= 0.
const DefaultSearchLimit = 5

// Quote is one archived quote with the request that produced it.
type Quote struct {
	OriginalRequest string
	TotalAmount     decimal.Decimal
	Explanation     string
	JobType         string
	OrderSize       string
	EventType       string
	OrderDate       ledger.Date
}

// History archives quotes and answers keyword searches over them.
type History interface {
	// Record archives a quote.
	Record(ctx context.Context, q Quote) error

	// Search returns quotes matching every term, newest first, at most
	// limit entries. limit <= 0 means DefaultSearchLimit.
	Search(ctx context.Context, terms []string, limit int) ([]Quote, error)
}

// Matches reports whether q matches every search term. Exported so store
// implementations without full-text support share one definition.
func Matches(q Quote, terms []string) bool {
	request := strings.ToLower(q.OriginalRequest)
	explanation := strings.ToLower(q.Explanation)
	for _, term := range terms {
		t := strings.ToLower(term)
		if !strings.Contains(request, t) && !strings.Contains(explanation, t) {
			return false
		}
	}
	return true
}

// =============================================================================
// MEMORY HISTORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	quotes []Quote
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, q Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return nil
}

func (m *Memory) Search(_ context.Context, terms []string, limit int) ([]Quote, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Quote
	for _, q := range m.quotes {
		if Matches(q, terms) {
			matched = append(matched, q)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
