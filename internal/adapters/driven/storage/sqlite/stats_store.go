package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// statsStore implements driven.StatsStore.
type statsStore struct {
	store *Store
}

var _ driven.StatsStore = (*statsStore)(nil)

// AddDaily adds delta to the counters of day. Negative deltas are ignored.
func (s *statsStore) AddDaily(ctx context.Context, day string, delta domain.DailyStats) error {
	if day == "" {
		return domain.ErrInvalidInput
	}
	d := domain.DailyStats{}.Add(delta)

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO daily_stats (date, queries_used, items_created, items_published, errors)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			queries_used = daily_stats.queries_used + excluded.queries_used,
			items_created = daily_stats.items_created + excluded.items_created,
			items_published = daily_stats.items_published + excluded.items_published,
			errors = daily_stats.errors + excluded.errors
	`, day, d.QueriesUsed, d.ItemsCreated, d.ItemsPublished, d.Errors)
	if err != nil {
		return fmt.Errorf("adding daily stats: %w", err)
	}
	return nil
}

// GetDaily returns the counters of day. Unknown days return zero counters.
func (s *statsStore) GetDaily(ctx context.Context, day string) (domain.DailyStats, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT date, queries_used, items_created, items_published, errors
		FROM daily_stats WHERE date = ?
	`, day)

	d, err := scanDailyStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyStats{Date: day}, nil
	}
	if err != nil {
		return domain.DailyStats{}, fmt.Errorf("scanning daily stats: %w", err)
	}
	return d, nil
}

// ListDaily returns the most recent days, newest first.
func (s *statsStore) ListDaily(ctx context.Context, limit int) ([]domain.DailyStats, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT date, queries_used, items_created, items_published, errors
		FROM daily_stats ORDER BY date DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying daily stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyStats
	for rows.Next() {
		d, err := scanDailyStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning daily stats: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily stats: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDailyStats(row rowScanner) (domain.DailyStats, error) {
	var d domain.DailyStats
	err := row.Scan(&d.Date, &d.QueriesUsed, &d.ItemsCreated, &d.ItemsPublished, &d.Errors)
	return d, err
}
