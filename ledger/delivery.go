package ledger

// =============================================================================
// DELIVERY ESTIMATOR - Quantity-tiered supplier lead times
// =============================================================================

// EstimateDelivery maps a base date and order quantity to an estimated
// supplier delivery date. Lead time grows with order size:
//
//	<=10 units      same day
//	11-100 units    +1 day
//	101-1000 units  +4 days
//	>1000 units     +7 days
//
// An unparseable base date falls back to the current process date. That is
// documented behavior, not an error path: the estimator never fails.
func EstimateDelivery(baseDate string, quantity int64) Date {
	base, err := ParseDate(baseDate)
	if err != nil {
		base = Today()
	}

	var days int
	switch {
	case quantity <= 10:
		days = 0
	case quantity <= 100:
		days = 1
	case quantity <= 1000:
		days = 4
	default:
		days = 7
	}
	return base.AddDays(days)
}
