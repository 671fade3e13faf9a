package driving

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// Publisher formats items and delivers them to their target channels.
type Publisher interface {
	// Publish delivers an item. Returns false without side effects when the
	// item is below the publish floor.
	Publish(ctx context.Context, item *domain.ContentItem) (bool, error)

	// PublishPending publishes stored ready items, oldest first.
	// Returns the number of items that reached published.
	PublishPending(ctx context.Context, limit int) (int, error)

	// FormatMessage renders the message text for an item.
	FormatMessage(item *domain.ContentItem) string
}
