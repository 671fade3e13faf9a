package driving

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// ComponentHealth is the health of one component.
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
}

// StatusReport summarises the pipeline for operators.
type StatusReport struct {
	Today          domain.DailyStats
	DailyQuota     int
	QuotaRemaining int
	SessionState   domain.SessionState
	ItemsByStatus  map[domain.ItemStatus]int
	Sessions       []domain.SessionBudget
	LastRuns       map[string]*domain.SessionRun
}

// StatusService reports pipeline health and history.
type StatusService interface {
	// Health checks every registered component.
	Health(ctx context.Context) []ComponentHealth

	// DailyStats returns counters for the most recent days, newest first.
	DailyStats(ctx context.Context, days int) ([]domain.DailyStats, error)

	// History returns recent session runs, most recent first.
	History(ctx context.Context, limit int) ([]domain.SessionRun, error)

	// Status returns the current report.
	Status(ctx context.Context) (*StatusReport, error)
}
