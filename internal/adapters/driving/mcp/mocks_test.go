package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
)

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	item        *domain.ContentItem
	run         *domain.SessionRun
	err         error
	lastQuery   string
	lastPublish bool
	lastSession string
}

func (m *mockScheduler) Start(_ context.Context) error { return m.err }

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) RunSession(_ context.Context, name string) (*domain.SessionRun, error) {
	m.lastSession = name
	return m.run, m.err
}

func (m *mockScheduler) RunQuery(_ context.Context, queryText string, publish bool) (*domain.ContentItem, error) {
	m.lastQuery = queryText
	m.lastPublish = publish
	return m.item, m.err
}

func (m *mockScheduler) DueSessions(_ context.Context, _ time.Time) ([]domain.SessionBudget, error) {
	return nil, m.err
}

func (m *mockScheduler) UpdateSessions(_ []domain.SessionBudget, _ domain.QueryPool) {}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	health   []driving.ComponentHealth
	stats    []domain.DailyStats
	runs     []domain.SessionRun
	report   *driving.StatusReport
	err      error
	lastDays int
}

func (m *mockStatusService) Health(_ context.Context) []driving.ComponentHealth {
	return m.health
}

func (m *mockStatusService) DailyStats(_ context.Context, days int) ([]domain.DailyStats, error) {
	m.lastDays = days
	return m.stats, m.err
}

func (m *mockStatusService) History(_ context.Context, _ int) ([]domain.SessionRun, error) {
	return m.runs, m.err
}

func (m *mockStatusService) Status(_ context.Context) (*driving.StatusReport, error) {
	return m.report, m.err
}

func newTestServer(sched *mockScheduler, status *mockStatusService) *Server {
	s, err := NewServer(&Ports{Scheduler: sched, Status: status})
	if err != nil {
		panic(err)
	}
	return s
}
