package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.ItemStore    = (*ItemStore)(nil)
	_ driven.ReceiptStore = (*ReceiptStore)(nil)
)

// ItemStore is an in-memory implementation of driven.ItemStore for testing.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]domain.ContentItem
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]domain.ContentItem)}
}

// Save creates or replaces an item.
func (s *ItemStore) Save(_ context.Context, item *domain.ContentItem) error {
	if item == nil || item.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = copyItem(*item)
	return nil
}

// Get retrieves an item by ID.
func (s *ItemStore) Get(_ context.Context, id string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyItem(item)
	return &out, nil
}

// UpdateStatus changes an item's status.
func (s *ItemStore) UpdateStatus(_ context.Context, id string, status domain.ItemStatus, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Status = status
	if status == domain.ItemPublished {
		item.PublishedAt = publishedAt
	}
	s.items[id] = item
	return nil
}

// ListByStatus returns items with status, oldest first.
func (s *ItemStore) ListByStatus(_ context.Context, status domain.ItemStatus, limit int) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ContentItem
	for _, item := range s.items {
		if item.Status == status {
			out = append(out, copyItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByStatus returns the number of items per status.
func (s *ItemStore) CountByStatus(_ context.Context) (map[domain.ItemStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ItemStatus]int)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts, nil
}

func copyItem(item domain.ContentItem) domain.ContentItem {
	item.Keywords = append([]string(nil), item.Keywords...)
	item.TargetChannels = append([]string(nil), item.TargetChannels...)
	return item
}

// ReceiptStore is an in-memory implementation of driven.ReceiptStore for testing.
type ReceiptStore struct {
	mu       sync.RWMutex
	receipts []domain.DeliveryReceipt
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{}
}

// Append records one delivery attempt.
func (s *ReceiptStore) Append(_ context.Context, receipt *domain.DeliveryReceipt) error {
	if receipt == nil || receipt.ItemID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, *receipt)
	return nil
}

// ListByItem returns the receipts of an item in attempt order.
func (s *ReceiptStore) ListByItem(_ context.Context, itemID string) ([]domain.DeliveryReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DeliveryReceipt
	for _, r := range s.receipts {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out, nil
}
