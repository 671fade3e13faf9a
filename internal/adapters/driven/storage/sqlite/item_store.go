package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// itemStore implements driven.ItemStore.
type itemStore struct {
	store *Store
}

var _ driven.ItemStore = (*itemStore)(nil)

const itemColumns = `id, query_hash, title, summary, category, importance_score,
	keywords, target_channels, raw_text, status, created_at, published_at`

// Save creates or replaces an item.
func (s *itemStore) Save(ctx context.Context, item *domain.ContentItem) error {
	if item == nil || item.ID == "" {
		return domain.ErrInvalidInput
	}

	keywords, err := marshalStrings(item.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	channels, err := marshalStrings(item.TargetChannels)
	if err != nil {
		return fmt.Errorf("marshalling channels: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO content_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			query_hash = excluded.query_hash,
			title = excluded.title,
			summary = excluded.summary,
			category = excluded.category,
			importance_score = excluded.importance_score,
			keywords = excluded.keywords,
			target_channels = excluded.target_channels,
			raw_text = excluded.raw_text,
			status = excluded.status,
			published_at = excluded.published_at
	`, item.ID, item.QueryHash, item.Title, item.Summary, item.Category,
		domain.ClampImportance(item.ImportanceScore), keywords, channels, item.RawText,
		string(item.Status), formatTime(item.CreatedAt), formatNullableTime(item.PublishedAt))
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// Get retrieves an item by ID.
func (s *itemStore) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM content_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateStatus changes an item's status.
func (s *itemStore) UpdateStatus(ctx context.Context, id string, status domain.ItemStatus, publishedAt time.Time) error {
	var published interface{}
	if status == domain.ItemPublished {
		published = formatNullableTime(publishedAt)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE content_items SET status = ?, published_at = COALESCE(?, published_at) WHERE id = ?
	`, string(status), published, id)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus returns items with status, oldest first.
func (s *itemStore) ListByStatus(ctx context.Context, status domain.ItemStatus, limit int) ([]domain.ContentItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+itemColumns+`
		FROM content_items WHERE status = ? ORDER BY created_at, id LIMIT ?
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// CountByStatus returns the number of items per status.
func (s *itemStore) CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM content_items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ItemStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		counts[domain.ItemStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item counts: %w", err)
	}
	return counts, nil
}

func scanItem(row rowScanner) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var keywords, channels, status, createdAt string
	var publishedAt sql.NullString
	if err := row.Scan(&item.ID, &item.QueryHash, &item.Title, &item.Summary, &item.Category,
		&item.ImportanceScore, &keywords, &channels, &item.RawText, &status, &createdAt, &publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &item.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshalling keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(channels), &item.TargetChannels); err != nil {
		return nil, fmt.Errorf("unmarshalling channels: %w", err)
	}
	item.Status = domain.ItemStatus(status)
	item.CreatedAt = parseTime(createdAt)
	item.PublishedAt = parseNullableTime(publishedAt)
	return &item, nil
}

func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// receiptStore implements driven.ReceiptStore.
type receiptStore struct {
	store *Store
}

var _ driven.ReceiptStore = (*receiptStore)(nil)

// Append records one delivery attempt.
func (s *receiptStore) Append(ctx context.Context, receipt *domain.DeliveryReceipt) error {
	if receipt == nil || receipt.ItemID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO delivery_receipts (item_id, channel, sent, external_message_id, error, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, receipt.ItemID, receipt.Channel, boolToInt(receipt.Sent),
		nullString(receipt.ExternalMessageID), nullString(receipt.Error), formatTime(receipt.AttemptedAt))
	if err != nil {
		return fmt.Errorf("appending receipt: %w", err)
	}
	return nil
}

// ListByItem returns the receipts of an item in attempt order.
func (s *receiptStore) ListByItem(ctx context.Context, itemID string) ([]domain.DeliveryReceipt, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT item_id, channel, sent, external_message_id, error, attempted_at
		FROM delivery_receipts WHERE item_id = ? ORDER BY id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying receipts: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryReceipt
	for rows.Next() {
		var r domain.DeliveryReceipt
		var sent int
		var extID, errText sql.NullString
		var attemptedAt string
		if err := rows.Scan(&r.ItemID, &r.Channel, &sent, &extID, &errText, &attemptedAt); err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		r.Sent = sent == 1
		r.ExternalMessageID = extID.String
		r.Error = errText.String
		r.AttemptedAt = parseTime(attemptedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipts: %w", err)
	}
	return out, nil
}
