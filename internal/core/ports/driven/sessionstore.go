package driven

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// SessionStore persists session budgets and run history.
type SessionStore interface {
	// SaveBudget creates or updates a budget by name.
	SaveBudget(ctx context.Context, budget *domain.SessionBudget) error

	// GetBudget retrieves a budget by name.
	// Returns nil and no error if the budget does not exist.
	GetBudget(ctx context.Context, name string) (*domain.SessionBudget, error)

	// ListBudgets returns every stored budget ordered by scheduled time.
	ListBudgets(ctx context.Context) ([]domain.SessionBudget, error)

	// RecordRun logs a finished session run.
	RecordRun(ctx context.Context, run *domain.SessionRun) error

	// LastRun returns the most recent run of a session.
	// Returns nil and no error if the session never ran.
	LastRun(ctx context.Context, name string) (*domain.SessionRun, error)

	// ListRuns returns recent runs across sessions, most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.SessionRun, error)
}
