package driven

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// QueryExecutor drives the upstream conversational assistant.
// Implementations are not required to be safe for concurrent use;
// the session engine serialises every call.
type QueryExecutor interface {
	// Authenticate signs in with the given credentials.
	// Returns domain.ErrAuthFailed when the upstream rejects them.
	Authenticate(ctx context.Context, creds domain.Credentials) error

	// Submit sends one query and waits for the complete response text.
	// The context carries the per-query deadline.
	// Returns domain.ErrAuthLost when the upstream session stopped being
	// authenticated, and domain.ErrUpstreamTimeout when no answer arrived in time.
	Submit(ctx context.Context, text string) (string, error)
}
