package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// ItemStore persists content items.
type ItemStore interface {
	// Save creates or replaces an item by ID.
	Save(ctx context.Context, item *domain.ContentItem) error

	// Get retrieves an item by ID.
	// Returns domain.ErrNotFound if the item does not exist.
	Get(ctx context.Context, id string) (*domain.ContentItem, error)

	// UpdateStatus changes an item's status. publishedAt is stored only when
	// status is domain.ItemPublished.
	UpdateStatus(ctx context.Context, id string, status domain.ItemStatus, publishedAt time.Time) error

	// ListByStatus returns items with the given status, oldest first.
	// limit <= 0 means no limit.
	ListByStatus(ctx context.Context, status domain.ItemStatus, limit int) ([]domain.ContentItem, error)

	// CountByStatus returns the number of items per status.
	CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error)
}

// ReceiptStore persists delivery receipts. Receipts are append-only.
type ReceiptStore interface {
	// Append records one delivery attempt.
	Append(ctx context.Context, receipt *domain.DeliveryReceipt) error

	// ListByItem returns every receipt for an item in attempt order.
	ListByItem(ctx context.Context, itemID string) ([]domain.DeliveryReceipt, error)
}
