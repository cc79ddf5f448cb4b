// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/difflin/supply-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an in-memory ledger.Store and ledger.Catalog. Each test gets
// its own isolated instance; there is no shared process-wide state.
type Memory struct {
	mu       sync.RWMutex
	records  []ledger.TransactionRecord
	nextID   int64
	refItems []ledger.ReferenceItem
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append persists rec and assigns the next sequential id. The id fetch and
// the insert happen under one lock, so ids are never duplicated or skipped
// even under concurrent appends.
func (m *Memory) Append(_ context.Context, rec ledger.TransactionRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	return rec.ID, nil
}

// Through returns copies of every record dated on or before asOf, in
// chronological order. Records are appended in id order; sorting by
// (date, id) keeps same-day records in insertion order.
func (m *Memory) Through(_ context.Context, asOf ledger.Date) ([]ledger.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TransactionRecord
	for _, rec := range m.records {
		if rec.Date.BeforeOrEqual(asOf) {
			result = append(result, rec)
		}
	}
	sortChronological(result)
	return result, nil
}

// All returns copies of every record in chronological order.
func (m *Memory) All(_ context.Context) ([]ledger.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.TransactionRecord, len(m.records))
	copy(result, m.records)
	sortChronological(result)
	return result, nil
}

func sortChronological(recs []ledger.TransactionRecord) {
	// Insertion sort: records arrive nearly ordered, and ledgers in tests
	// are small.
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && laterThan(recs[j-1], recs[j]); j-- {
			recs[j-1], recs[j] = recs[j], recs[j-1]
		}
	}
}

func laterThan(a, b ledger.TransactionRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}

// =============================================================================
// REFERENCE CATALOG (ledger.Catalog)
// =============================================================================

// SaveReferenceItems replaces the reference inventory table.
func (m *Memory) SaveReferenceItems(_ context.Context, items []ledger.ReferenceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refItems = make([]ledger.ReferenceItem, len(items))
	copy(m.refItems, items)
	return nil
}

// ReferenceItems returns the reference inventory table.
func (m *Memory) ReferenceItems(_ context.Context) ([]ledger.ReferenceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.ReferenceItem, len(m.refItems))
	copy(result, m.refItems)
	return result, nil
}
