/*
Package rulebased provides deterministic, keyword-driven implementations
of every pipeline capability.

PURPOSE:
  The workflow coordinator treats capabilities as black boxes. This package
  supplies a reference set driven entirely by text rules over the catalog:
  no external decision service, fully reproducible, suitable for the bundled
  server binary and for end-to-end tests.

KEY CONCEPTS IN THIS FILE (parse.go):
  - parsedRequest: item, quantity, and requested date extracted from free
    text. Item matching is case-insensitive against the catalog, preferring
    the longest name that appears in the request.
*/
package rulebased

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/difflin/supply-engine/catalog"
	"github.com/difflin/supply-engine/ledger"
)

var (
	quantityPattern = regexp.MustCompile(`\b(\d{1,7})\b`)
	datePattern     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

// parsedRequest is what the rules managed to extract from the raw text.
type parsedRequest struct {
	Item     catalog.Supply
	HasItem  bool
	Quantity int64
	Date     ledger.Date
}

// parseRequest extracts item, quantity, and date. Missing pieces get
// zero values; Date falls back to today so downstream arithmetic always
// has a base date.
func parseRequest(text string) parsedRequest {
	var p parsedRequest
	lower := strings.ToLower(text)

	// Longest catalog name wins, so "Large poster paper (24x36 inches)"
	// beats "Poster paper" when both occur.
	for _, s := range catalog.PaperSupplies {
		if strings.Contains(lower, strings.ToLower(s.ItemName)) {
			if !p.HasItem || len(s.ItemName) > len(p.Item.ItemName) {
				p.Item = s
				p.HasItem = true
			}
		}
	}

	if m := datePattern.FindString(text); m != "" {
		if d, err := ledger.ParseDate(m); err == nil {
			p.Date = d
		}
	}
	if p.Date.IsZero() {
		p.Date = ledger.Today()
	}

	// First number that is not part of the date.
	stripped := datePattern.ReplaceAllString(text, "")
	if m := quantityPattern.FindString(stripped); m != "" {
		if n, err := strconv.ParseInt(m, 10, 64); err == nil {
			p.Quantity = n
		}
	}
	return p
}
