package driving

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// SessionEngine runs queries against the upstream through one authenticated session.
type SessionEngine interface {
	// Execute runs a query, answering from the dedup cache when possible.
	// Calls are serialised in arrival order.
	Execute(ctx context.Context, queryText string) (string, error)

	// EnsureActive authenticates if needed.
	EnsureActive(ctx context.Context) error

	// State returns the current session state.
	State() domain.SessionState

	// Close releases the upstream session. Later calls fail with domain.ErrSessionClosed.
	Close() error
}

// Pipeline converts an upstream response into a stored content item.
type Pipeline interface {
	// CreateItem classifies the response, assigns an ID and stores the item
	// with status ready.
	CreateItem(ctx context.Context, queryText, responseText string) (*domain.ContentItem, error)
}
