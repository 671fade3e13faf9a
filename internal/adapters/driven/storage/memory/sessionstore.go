package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore for testing.
type SessionStore struct {
	mu      sync.RWMutex
	budgets map[string]domain.SessionBudget
	runs    []domain.SessionRun
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{budgets: make(map[string]domain.SessionBudget)}
}

// SaveBudget creates or updates a budget.
func (s *SessionStore) SaveBudget(_ context.Context, budget *domain.SessionBudget) error {
	if budget == nil || budget.Name == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budget.Name] = *budget
	return nil
}

// GetBudget retrieves a budget, or nil.
func (s *SessionStore) GetBudget(_ context.Context, name string) (*domain.SessionBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[name]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// ListBudgets returns budgets ordered by scheduled time.
func (s *SessionStore) ListBudgets(_ context.Context) ([]domain.SessionBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SessionBudget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime == out[j].ScheduledTime {
			return out[i].Name < out[j].Name
		}
		return out[i].ScheduledTime < out[j].ScheduledTime
	})
	return out, nil
}

// RecordRun logs a finished run.
func (s *SessionStore) RecordRun(_ context.Context, run *domain.SessionRun) error {
	if run == nil || run.SessionName == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// LastRun returns the most recent run of a session, or nil.
func (s *SessionStore) LastRun(_ context.Context, name string) (*domain.SessionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last *domain.SessionRun
	for i := range s.runs {
		r := s.runs[i]
		if r.SessionName != name {
			continue
		}
		if last == nil || !r.StartedAt.Before(last.StartedAt) {
			last = &r
		}
	}
	return last, nil
}

// ListRuns returns recent runs, most recent first.
func (s *SessionStore) ListRuns(_ context.Context, limit int) ([]domain.SessionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.SessionRun(nil), s.runs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
