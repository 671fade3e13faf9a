package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// Scheduler runs named sessions on their daily schedule or on demand.
type Scheduler interface {
	// Start begins triggering due sessions.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the trigger loop.
	Stop() error

	// RunSession runs one session now and returns its recorded outcome.
	RunSession(ctx context.Context, name string) (*domain.SessionRun, error)

	// RunQuery executes a single ad-hoc query and creates an item from it.
	RunQuery(ctx context.Context, queryText string, publish bool) (*domain.ContentItem, error)

	// DueSessions returns the sessions that should run at now.
	DueSessions(ctx context.Context, now time.Time) ([]domain.SessionBudget, error)

	// UpdateSessions replaces the budgets and query pool.
	UpdateSessions(budgets []domain.SessionBudget, pool domain.QueryPool)
}
