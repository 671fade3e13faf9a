package driven

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// Ledger is the durable record of upstream queries and the daily quota counter.
// It must survive restarts: the quota and the dedup cache both depend on it.
type Ledger interface {
	// Lookup returns the record for a content hash.
	// Returns nil and no error if no query with that hash was recorded.
	Lookup(ctx context.Context, contentHash string) (*domain.QueryRecord, error)

	// Record stores a query outcome keyed by its content hash.
	// A failed record may be replaced later; a succeeded record is never
	// replaced. Returns false when the call was a no-op for that reason.
	Record(ctx context.Context, rec *domain.QueryRecord) (bool, error)

	// QueriesUsedOn returns the number of upstream queries counted for a day
	// key (YYYY-MM-DD). Unknown days count zero.
	QueriesUsedOn(ctx context.Context, day string) (int, error)

	// IncrementDailyQuery adds one to the counter for a day and returns the new value.
	IncrementDailyQuery(ctx context.Context, day string) (int, error)
}
