package domain

// DailyStats holds the counters for one calendar date.
// Counters only grow within a day; a new date starts a new row.
type DailyStats struct {
	// Date is the DayKey of the row.
	Date string

	QueriesUsed    int
	ItemsCreated   int
	ItemsPublished int
	Errors         int
}

// Add returns s with the non-negative counters of delta added.
// Negative deltas are ignored so counters never decrease.
func (s DailyStats) Add(delta DailyStats) DailyStats {
	s.QueriesUsed += nonNegative(delta.QueriesUsed)
	s.ItemsCreated += nonNegative(delta.ItemsCreated)
	s.ItemsPublished += nonNegative(delta.ItemsPublished)
	s.Errors += nonNegative(delta.Errors)
	return s
}

// IsZero reports whether no counter is set.
func (s DailyStats) IsZero() bool {
	return s.QueriesUsed == 0 && s.ItemsCreated == 0 && s.ItemsPublished == 0 && s.Errors == 0
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
