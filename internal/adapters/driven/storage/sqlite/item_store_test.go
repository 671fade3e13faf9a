package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var itemBase = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func TestItemStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	saved := createTestItem(t, store, "item-1", itemBase)

	got, err := store.ItemStore().Get(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Title, got.Title)
	assert.Equal(t, saved.Summary, got.Summary)
	assert.Equal(t, saved.QueryHash, got.QueryHash)
	assert.Equal(t, 7, got.ImportanceScore)
	assert.Equal(t, []string{"AI", "GPT"}, got.Keywords)
	assert.Equal(t, []string{"it_news"}, got.TargetChannels)
	assert.Equal(t, domain.ItemReady, got.Status)
	assert.True(t, itemBase.Equal(got.CreatedAt))
	assert.True(t, got.PublishedAt.IsZero())
}

func TestItemStore_Save_EmptySlices(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	item := &domain.ContentItem{ID: "bare", ImportanceScore: 5, Status: domain.ItemReady, CreatedAt: itemBase}
	require.NoError(t, store.ItemStore().Save(ctx, item))

	got, err := store.ItemStore().Get(ctx, "bare")
	require.NoError(t, err)
	assert.Empty(t, got.Keywords)
	assert.Empty(t, got.TargetChannels)
}

func TestItemStore_Save_ClampsImportance(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	item := &domain.ContentItem{ID: "hot", ImportanceScore: 14, Status: domain.ItemReady, CreatedAt: itemBase}
	require.NoError(t, store.ItemStore().Save(ctx, item))

	got, err := store.ItemStore().Get(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxImportance, got.ImportanceScore)
}

func TestItemStore_Save_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	item := createTestItem(t, store, "item-1", itemBase)
	item.Title = "Updated"
	require.NoError(t, store.ItemStore().Save(ctx, item))

	got, err := store.ItemStore().Get(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
}

func TestItemStore_Save_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.ErrorIs(t, store.ItemStore().Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.ItemStore().Save(context.Background(), &domain.ContentItem{}), domain.ErrInvalidInput)
}

func TestItemStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.ItemStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStore_UpdateStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	createTestItem(t, store, "item-1", itemBase)
	publishedAt := itemBase.Add(time.Hour)

	require.NoError(t, items.UpdateStatus(ctx, "item-1", domain.ItemPublished, publishedAt))

	got, err := items.Get(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemPublished, got.Status)
	assert.True(t, publishedAt.Equal(got.PublishedAt))
}

func TestItemStore_UpdateStatus_SkippedKeepsPublishedAtEmpty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	createTestItem(t, store, "item-1", itemBase)
	require.NoError(t, items.UpdateStatus(ctx, "item-1", domain.ItemSkipped, itemBase.Add(time.Hour)))

	got, err := items.Get(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemSkipped, got.Status)
	assert.True(t, got.PublishedAt.IsZero())
}

func TestItemStore_UpdateStatus_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.ItemStore().UpdateStatus(context.Background(), "missing", domain.ItemSkipped, time.Time{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStore_ListByStatus_OldestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	createTestItem(t, store, "c", itemBase.Add(2*time.Minute))
	createTestItem(t, store, "a", itemBase)
	createTestItem(t, store, "b", itemBase.Add(time.Minute))
	createTestItem(t, store, "done", itemBase.Add(-time.Minute))
	require.NoError(t, items.UpdateStatus(ctx, "done", domain.ItemPublished, itemBase))

	ready, err := items.ListByStatus(ctx, domain.ItemReady, 0)
	require.NoError(t, err)
	require.Len(t, ready, 3)
	assert.Equal(t, "a", ready[0].ID)
	assert.Equal(t, "b", ready[1].ID)
	assert.Equal(t, "c", ready[2].ID)

	limited, err := items.ListByStatus(ctx, domain.ItemReady, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	published, err := items.ListByStatus(ctx, domain.ItemPublished, 0)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "done", published[0].ID)
}

func TestItemStore_CountByStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	createTestItem(t, store, "a", itemBase)
	createTestItem(t, store, "b", itemBase)
	createTestItem(t, store, "c", itemBase)
	require.NoError(t, items.UpdateStatus(ctx, "c", domain.ItemSkipped, time.Time{}))

	counts, err := items.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.ItemReady])
	assert.Equal(t, 1, counts[domain.ItemSkipped])
	assert.Equal(t, 0, counts[domain.ItemPublished])
}

// ==================== ReceiptStore Tests ====================

func TestReceiptStore_AppendAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	receipts := store.ReceiptStore()

	createTestItem(t, store, "item-1", itemBase)

	require.NoError(t, receipts.Append(ctx, &domain.DeliveryReceipt{
		ItemID: "item-1", Channel: "it_news", Sent: true, ExternalMessageID: "42", AttemptedAt: itemBase,
	}))
	require.NoError(t, receipts.Append(ctx, &domain.DeliveryReceipt{
		ItemID: "item-1", Channel: "automation", Error: "send to automation: flood", AttemptedAt: itemBase.Add(time.Second),
	}))

	got, err := receipts.ListByItem(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "it_news", got[0].Channel)
	assert.True(t, got[0].Sent)
	assert.Equal(t, "42", got[0].ExternalMessageID)
	assert.Empty(t, got[0].Error)

	assert.Equal(t, "automation", got[1].Channel)
	assert.False(t, got[1].Sent)
	assert.Empty(t, got[1].ExternalMessageID)
	assert.Equal(t, "send to automation: flood", got[1].Error)
	assert.True(t, itemBase.Add(time.Second).Equal(got[1].AttemptedAt))
}

func TestReceiptStore_ListByItem_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.ReceiptStore().ListByItem(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReceiptStore_Append_RequiresItem(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.ReceiptStore().Append(context.Background(), &domain.DeliveryReceipt{
		ItemID: "ghost", Channel: "it_news", AttemptedAt: itemBase,
	})
	assert.Error(t, err, "foreign key should reject receipts for unknown items")
}

func TestReceiptStore_Append_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.ErrorIs(t, store.ReceiptStore().Append(context.Background(), nil), domain.ErrInvalidInput)
}
