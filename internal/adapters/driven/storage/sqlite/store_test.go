package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "newsdesk-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestItem saves an item to satisfy receipt foreign keys.
func createTestItem(t *testing.T, store *Store, id string, createdAt time.Time) *domain.ContentItem {
	t.Helper()
	item := &domain.ContentItem{
		ID:              id,
		QueryHash:       domain.ContentHash("query " + id),
		Title:           "Title " + id,
		Summary:         "Summary " + id + ".",
		Category:        "ai",
		ImportanceScore: 7,
		Keywords:        []string{"AI", "GPT"},
		TargetChannels:  []string{"it_news"},
		RawText:         "raw " + id,
		CreatedAt:       createdAt,
		Status:          domain.ItemReady,
	}
	require.NoError(t, store.ItemStore().Save(context.Background(), item))
	return item
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "newsdesk-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "newsdesk.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "newsdesk-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	nestedDir := filepath.Join(tempDir, "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_ErrorOpeningDatabase(t *testing.T) {
	// A file where the data directory should be
	tempFile, err := os.CreateTemp("", "not-a-dir-*")
	require.NoError(t, err)
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = NewStore(tempFile.Name())
	assert.Error(t, err)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tables := []string{
		"query_records",
		"content_items",
		"delivery_receipts",
		"daily_stats",
		"session_budgets",
		"session_runs",
	}

	for _, table := range tables {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestStore_MigrationIdempotency(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "newsdesk-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	_, err = store1.Ledger().IncrementDailyQuery(context.Background(), "2024-06-03")
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening must not rerun migrations or lose data
	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count int
	require.NoError(t, store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	used, err := store2.Ledger().QueriesUsedOn(context.Background(), "2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_WALMode(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var journalMode string
	err := store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.Ledger())
	assert.NotNil(t, store.ItemStore())
	assert.NotNil(t, store.ReceiptStore())
	assert.NotNil(t, store.StatsStore())
	assert.NotNil(t, store.SessionStore())
}

func TestStore_Check(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, "database", store.Name())
	assert.NoError(t, store.Check(context.Background()))
}

func TestStore_CheckAfterClose(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.Close())

	assert.Error(t, store.Check(context.Background()))
}

func TestStore_ContextCancellation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Ledger().IncrementDailyQuery(ctx, "2024-06-03")
	assert.Error(t, err)
}

// ==================== Helper Tests ====================

func TestFormatTime_FixedWidthUTC(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	a := formatTime(time.Date(2024, 6, 3, 12, 0, 0, 0, loc))
	b := formatTime(time.Date(2024, 6, 3, 9, 0, 0, 500, time.UTC))

	assert.Equal(t, "2024-06-03T09:00:00.000000000Z", a)
	assert.Len(t, b, len(a))
	assert.Less(t, a, b)
}

func TestParseTime_Roundtrip(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 30, 15, 123456789, time.UTC)
	out := parseTime(formatTime(in))
	assert.True(t, in.Equal(out))
}

func TestParseTime_Invalid(t *testing.T) {
	assert.True(t, parseTime("not a time").IsZero())
}

func TestFormatNullableTime_Zero(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))
}

func TestIsBusy(t *testing.T) {
	assert.False(t, isBusy(nil))
	assert.False(t, isBusy(assert.AnError))
	assert.True(t, isBusy(errString("database is locked (5) (SQLITE_BUSY)")))
	assert.True(t, isBusy(errString("database table is locked")))
}

type errString string

func (e errString) Error() string { return string(e) }
