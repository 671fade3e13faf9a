package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure StatsStore implements the interface.
var _ driven.StatsStore = (*StatsStore)(nil)

// StatsStore is an in-memory implementation of driven.StatsStore for testing.
type StatsStore struct {
	mu   sync.RWMutex
	days map[string]domain.DailyStats
}

// NewStatsStore creates a new in-memory stats store.
func NewStatsStore() *StatsStore {
	return &StatsStore{days: make(map[string]domain.DailyStats)}
}

// AddDaily adds delta to the counters of day.
func (s *StatsStore) AddDaily(_ context.Context, day string, delta domain.DailyStats) error {
	if day == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.days[day]
	cur.Date = day
	s.days[day] = cur.Add(delta)
	return nil
}

// GetDaily returns the counters of day.
func (s *StatsStore) GetDaily(_ context.Context, day string) (domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.days[day]
	if !ok {
		return domain.DailyStats{Date: day}, nil
	}
	return cur, nil
}

// ListDaily returns the most recent days, newest first.
func (s *StatsStore) ListDaily(_ context.Context, limit int) ([]domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DailyStats, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
