package ledger

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day abstraction (the ledger is dated, not timestamped)
// =============================================================================

// Date is a calendar day. All point-in-time queries cut off at a Date,
// inclusive. The canonical string form is zero-padded ISO-8601 (YYYY-MM-DD),
// which makes lexicographic order identical to chronological order - the
// property the SQLite store relies on for its date range scans.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// Constructors

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a canonical YYYY-MM-DD string, or any ISO-8601 datetime
// whose date portion precedes a 'T' (e.g. "2025-01-01T00:00:00").
func ParseDate(s string) (Date, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(s), "T")
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// Today returns the current process date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison

func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalJSON encodes the date in its canonical form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
