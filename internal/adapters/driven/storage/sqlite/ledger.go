package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// ledger implements driven.Ledger.
// The daily query counter is the queries_used column of daily_stats.
type ledger struct {
	store *Store
}

var _ driven.Ledger = (*ledger)(nil)

// Lookup returns the record for a content hash, or nil.
func (l *ledger) Lookup(ctx context.Context, contentHash string) (*domain.QueryRecord, error) {
	row := l.store.db.QueryRowContext(ctx, `
		SELECT content_hash, query_text, raw_response, succeeded, recorded_at
		FROM query_records WHERE content_hash = ?
	`, contentHash)

	var rec domain.QueryRecord
	var succeeded int
	var recordedAt string
	if err := row.Scan(&rec.ContentHash, &rec.QueryText, &rec.RawResponse, &succeeded, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning query record: %w", err)
	}
	rec.Succeeded = succeeded == 1
	rec.Timestamp = parseTime(recordedAt)
	return &rec, nil
}

// Record upserts a query record. A stored succeeded record is never replaced.
func (l *ledger) Record(ctx context.Context, rec *domain.QueryRecord) (bool, error) {
	if rec == nil || rec.ContentHash == "" {
		return false, domain.ErrInvalidInput
	}

	res, err := l.store.db.ExecContext(ctx, `
		INSERT INTO query_records (content_hash, query_text, raw_response, succeeded, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			query_text = excluded.query_text,
			raw_response = excluded.raw_response,
			succeeded = excluded.succeeded,
			recorded_at = excluded.recorded_at
		WHERE query_records.succeeded = 0
	`, rec.ContentHash, rec.QueryText, rec.RawResponse, boolToInt(rec.Succeeded), formatTime(rec.Timestamp))
	if err != nil {
		return false, fmt.Errorf("recording query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// QueriesUsedOn returns the query counter for day.
func (l *ledger) QueriesUsedOn(ctx context.Context, day string) (int, error) {
	var used int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT queries_used FROM daily_stats WHERE date = ?", day).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading queries used: %w", err)
	}
	return used, nil
}

// IncrementDailyQuery adds one to the counter for day and returns the new value.
func (l *ledger) IncrementDailyQuery(ctx context.Context, day string) (int, error) {
	if day == "" {
		return 0, domain.ErrInvalidInput
	}

	var used int
	err := l.store.runTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO daily_stats (date, queries_used) VALUES (?, 1)
			ON CONFLICT(date) DO UPDATE SET queries_used = daily_stats.queries_used + 1
		`, day); err != nil {
			return fmt.Errorf("incrementing queries used: %w", err)
		}
		return tx.QueryRowContext(ctx,
			"SELECT queries_used FROM daily_stats WHERE date = ?", day).Scan(&used)
	})
	if err != nil {
		return 0, err
	}
	return used, nil
}
