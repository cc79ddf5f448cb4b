/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements the persistence contracts (ledger.Store, ledger.Catalog,
  quotes.History) using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The transactions table is append-only:
  - No UPDATE statements, no DELETE statements
  - Corrections via compensating records only
  - A CHECK constraint rejects unrecognized transaction types even if a
    caller bypasses the Ledger's validation

ID ASSIGNMENT:
  Record ids come from the table's INTEGER PRIMARY KEY. The insert and the
  last-insert-id fetch run on one connection under one mutex, so ids are
  unique and monotonically increasing even under concurrent appends.

DATES:
  Stored as TEXT in zero-padded ISO-8601 (YYYY-MM-DD), so the date range
  predicates compare lexicographically in chronological order.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block
  behind the single writer, and crash recovery is better.

USAGE:
  store, err := sqlite.New("./data/difflin.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  led := ledger.NewLedger(store)

SEE ALSO:
  - ledger/ledger.go: Store contract and validation
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/quotes"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps last_insert_rowid paired with its insert.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_name TEXT,
		transaction_type TEXT NOT NULL
			CHECK (transaction_type IN ('stock_orders', 'sales')),
		units INTEGER,
		price TEXT NOT NULL,
		transaction_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(transaction_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_item_date
		ON transactions(item_name, transaction_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_type
		ON transactions(transaction_type);

	-- Reference inventory (static catalog, not ledger-derived)
	CREATE TABLE IF NOT EXISTS inventory (
		item_name TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		current_stock INTEGER NOT NULL,
		min_stock_level INTEGER NOT NULL
	);

	-- Historical quotes
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_request TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		quote_explanation TEXT NOT NULL,
		job_type TEXT,
		order_size TEXT,
		event_type TEXT,
		order_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_order_date
		ON quotes(order_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (ledger.Store interface)
// =============================================================================

// Append inserts a record and returns its assigned id. The insert and the
// id fetch are serialized under the store mutex as one atomic unit.
func (s *Store) Append(ctx context.Context, rec ledger.TransactionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var units any
	if rec.Units != nil {
		units = *rec.Units
	}
	var itemName any
	if rec.ItemName != nil {
		itemName = *rec.ItemName
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (item_name, transaction_type, units, price, transaction_date)
		VALUES (?, ?, ?, ?, ?)`,
		itemName,
		string(rec.Type),
		units,
		rec.Price.String(),
		rec.Date.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// Through returns every record dated on or before asOf, chronologically.
func (s *Store) Through(ctx context.Context, asOf ledger.Date) ([]ledger.TransactionRecord, error) {
	query := `
		SELECT id, item_name, transaction_type, units, price, transaction_date
		FROM transactions
		WHERE transaction_date <= ?
		ORDER BY transaction_date ASC, id ASC
	`
	return s.queryRecords(ctx, query, asOf.String())
}

// All returns the full ledger history, chronologically.
func (s *Store) All(ctx context.Context) ([]ledger.TransactionRecord, error) {
	query := `
		SELECT id, item_name, transaction_type, units, price, transaction_date
		FROM transactions
		ORDER BY transaction_date ASC, id ASC
	`
	return s.queryRecords(ctx, query)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]ledger.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []ledger.TransactionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (ledger.TransactionRecord, error) {
	var (
		rec      ledger.TransactionRecord
		itemName sql.NullString
		txType   string
		units    sql.NullInt64
		price    string
		date     string
	)

	if err := rows.Scan(&rec.ID, &itemName, &txType, &units, &price, &date); err != nil {
		return rec, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if itemName.Valid {
		name := itemName.String
		rec.ItemName = &name
	}
	if units.Valid {
		u := units.Int64
		rec.Units = &u
	}
	rec.Type = ledger.TxType(txType)
	rec.Price = mustDecimal(price)
	rec.Date, _ = ledger.ParseDate(date)
	return rec, nil
}

// =============================================================================
// REFERENCE INVENTORY (ledger.Catalog interface)
// =============================================================================

// SaveReferenceItems replaces the reference inventory table.
func (s *Store) SaveReferenceItems(ctx context.Context, items []ledger.ReferenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM inventory"); err != nil {
		return err
	}
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory (item_name, category, unit_price, current_stock, min_stock_level)
			VALUES (?, ?, ?, ?, ?)`,
			item.ItemName, item.Category, item.UnitPrice.String(),
			item.CurrentStock, item.MinStockLevel,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reference item %q: %w", item.ItemName, err)
		}
	}
	return tx.Commit()
}

// ReferenceItems returns the reference inventory table.
func (s *Store) ReferenceItems(ctx context.Context) ([]ledger.ReferenceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, category, unit_price, current_stock, min_stock_level
		FROM inventory
		ORDER BY item_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ledger.ReferenceItem
	for rows.Next() {
		var item ledger.ReferenceItem
		var unitPrice string
		if err := rows.Scan(&item.ItemName, &item.Category, &unitPrice,
			&item.CurrentStock, &item.MinStockLevel); err != nil {
			return nil, err
		}
		item.UnitPrice = mustDecimal(unitPrice)
		items = append(items, item)
	}
	return items, rows.Err()
}

// HasReferenceItems reports whether the catalog has been seeded.
func (s *Store) HasReferenceItems(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory").Scan(&count)
	return count > 0, err
}

// =============================================================================
// QUOTE HISTORY (quotes.History interface)
// =============================================================================

// Record archives a quote.
func (s *Store) Record(ctx context.Context, q quotes.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (original_request, total_amount, quote_explanation,
			job_type, order_size, event_type, order_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.OriginalRequest, q.TotalAmount.String(), q.Explanation,
		q.JobType, q.OrderSize, q.EventType, q.OrderDate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// Search returns archived quotes matching every term, newest first.
func (s *Store) Search(ctx context.Context, terms []string, limit int) ([]quotes.Quote, error) {
	if limit <= 0 {
		limit = quotes.DefaultSearchLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT original_request, total_amount, quote_explanation,
		job_type, order_size, event_type, order_date FROM quotes`)
	var args []any
	for i, term := range terms {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString("(LOWER(original_request) LIKE ? OR LOWER(quote_explanation) LIKE ?)")
		pattern := "%" + strings.ToLower(term) + "%"
		args = append(args, pattern, pattern)
	}
	sb.WriteString(" ORDER BY order_date DESC, id DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []quotes.Quote
	for rows.Next() {
		var q quotes.Quote
		var total, orderDate string
		var jobType, orderSize, eventType sql.NullString
		if err := rows.Scan(&q.OriginalRequest, &total, &q.Explanation,
			&jobType, &orderSize, &eventType, &orderDate); err != nil {
			return nil, err
		}
		q.TotalAmount = mustDecimal(total)
		q.JobType = jobType.String
		q.OrderSize = orderSize.String
		q.EventType = eventType.String
		q.OrderDate, _ = ledger.ParseDate(orderDate)
		result = append(result, q)
	}
	return result, rows.Err()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
