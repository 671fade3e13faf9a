package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.Ledger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.Ledger for testing.
// The daily query counter lives in the shared StatsStore.
type Ledger struct {
	mu      sync.Mutex
	records map[string]domain.QueryRecord
	stats   *StatsStore

	// Err, when set, is returned by every method.
	Err error
}

// NewLedger creates a ledger counting queries into stats.
// A nil stats gets a private store.
func NewLedger(stats *StatsStore) *Ledger {
	if stats == nil {
		stats = NewStatsStore()
	}
	return &Ledger{records: make(map[string]domain.QueryRecord), stats: stats}
}

// Lookup returns the record for a content hash, or nil.
func (l *Ledger) Lookup(_ context.Context, contentHash string) (*domain.QueryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	rec, ok := l.records[contentHash]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Record upserts a record unless a succeeded one is already stored.
func (l *Ledger) Record(_ context.Context, rec *domain.QueryRecord) (bool, error) {
	if rec == nil || rec.ContentHash == "" {
		return false, domain.ErrInvalidInput
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	if existing, ok := l.records[rec.ContentHash]; ok && existing.Succeeded {
		return false, nil
	}
	l.records[rec.ContentHash] = *rec
	return true, nil
}

// QueriesUsedOn returns the query counter for day.
func (l *Ledger) QueriesUsedOn(ctx context.Context, day string) (int, error) {
	if err := l.err(); err != nil {
		return 0, err
	}
	d, err := l.stats.GetDaily(ctx, day)
	if err != nil {
		return 0, err
	}
	return d.QueriesUsed, nil
}

// IncrementDailyQuery adds one to the counter for day.
func (l *Ledger) IncrementDailyQuery(ctx context.Context, day string) (int, error) {
	if err := l.err(); err != nil {
		return 0, err
	}
	if err := l.stats.AddDaily(ctx, day, domain.DailyStats{QueriesUsed: 1}); err != nil {
		return 0, err
	}
	return l.QueriesUsedOn(ctx, day)
}

func (l *Ledger) err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Err
}

// Len returns the number of stored records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
