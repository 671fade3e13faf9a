package services

import (
	"context"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

const healthCheckTimeout = 10 * time.Second

// StatusService reports pipeline health, counters and history.
type StatusService struct {
	engine   driving.SessionEngine
	ledger   driven.Ledger
	items    driven.ItemStore
	stats    driven.StatsStore
	sessions driven.SessionStore
	checkers []driven.HealthChecker
	quota    int
	now      Clock
}

// NewStatusService creates a status service. Checkers may be empty.
func NewStatusService(
	engine driving.SessionEngine,
	ledger driven.Ledger,
	items driven.ItemStore,
	stats driven.StatsStore,
	sessions driven.SessionStore,
	quota int,
	clock Clock,
	checkers ...driven.HealthChecker,
) *StatusService {
	if clock == nil {
		clock = time.Now
	}
	return &StatusService{
		engine:   engine,
		ledger:   ledger,
		items:    items,
		stats:    stats,
		sessions: sessions,
		checkers: checkers,
		quota:    quota,
		now:      clock,
	}
}

// Health checks every registered component and the upstream session.
func (s *StatusService) Health(ctx context.Context) []driving.ComponentHealth {
	report := make([]driving.ComponentHealth, 0, len(s.checkers)+1)
	for _, c := range s.checkers {
		cctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := c.Check(cctx)
		cancel()

		h := driving.ComponentHealth{Name: c.Name(), Healthy: err == nil, Message: "ok"}
		if err != nil {
			h.Message = err.Error()
		}
		report = append(report, h)
	}

	if s.engine != nil {
		state := s.engine.State()
		report = append(report, driving.ComponentHealth{
			Name:    "upstream session",
			Healthy: state != domain.SessionClosed,
			Message: state.String(),
		})
	}
	return report
}

// DailyStats returns counters for the most recent days, newest first.
func (s *StatusService) DailyStats(ctx context.Context, days int) ([]domain.DailyStats, error) {
	if days <= 0 {
		days = 1
	}
	out, err := s.stats.ListDaily(ctx, days)
	if err != nil {
		return nil, domain.WrapStorage("list daily stats", err)
	}
	return out, nil
}

// History returns recent session runs, most recent first.
func (s *StatusService) History(ctx context.Context, limit int) ([]domain.SessionRun, error) {
	runs, err := s.sessions.ListRuns(ctx, limit)
	if err != nil {
		return nil, domain.WrapStorage("list session runs", err)
	}
	return runs, nil
}

// Status returns the current report.
func (s *StatusService) Status(ctx context.Context) (*driving.StatusReport, error) {
	day := domain.DayKey(s.now())

	today, err := s.stats.GetDaily(ctx, day)
	if err != nil {
		return nil, domain.WrapStorage("read daily stats", err)
	}
	used, err := s.ledger.QueriesUsedOn(ctx, day)
	if err != nil {
		return nil, domain.WrapStorage("read daily quota", err)
	}
	today.Date = day
	today.QueriesUsed = used

	counts, err := s.items.CountByStatus(ctx)
	if err != nil {
		return nil, domain.WrapStorage("count items", err)
	}
	budgets, err := s.sessions.ListBudgets(ctx)
	if err != nil {
		return nil, domain.WrapStorage("list budgets", err)
	}

	lastRuns := make(map[string]*domain.SessionRun, len(budgets))
	for _, b := range budgets {
		run, err := s.sessions.LastRun(ctx, b.Name)
		if err != nil {
			return nil, domain.WrapStorage("read last run", err)
		}
		if run != nil {
			lastRuns[b.Name] = run
		}
	}

	remaining := s.quota - used
	if remaining < 0 {
		remaining = 0
	}

	report := &driving.StatusReport{
		Today:          today,
		DailyQuota:     s.quota,
		QuotaRemaining: remaining,
		ItemsByStatus:  counts,
		Sessions:       budgets,
		LastRuns:       lastRuns,
	}
	if s.engine != nil {
		report.SessionState = s.engine.State()
	}
	return report, nil
}
