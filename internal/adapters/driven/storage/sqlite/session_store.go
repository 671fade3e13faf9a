package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveBudget creates or updates a budget by name.
func (s *sessionStore) SaveBudget(ctx context.Context, budget *domain.SessionBudget) error {
	if budget == nil || budget.Name == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO session_budgets (name, scheduled_time, target_item_count, query_budget, enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			scheduled_time = excluded.scheduled_time,
			target_item_count = excluded.target_item_count,
			query_budget = excluded.query_budget,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, budget.Name, budget.ScheduledTime, budget.TargetItemCount, budget.QueryBudget,
		boolToInt(budget.Enabled), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by name.
// Returns nil and no error if the budget does not exist.
func (s *sessionStore) GetBudget(ctx context.Context, name string) (*domain.SessionBudget, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, scheduled_time, target_item_count, query_budget, enabled
		FROM session_budgets WHERE name = ?
	`, name)

	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Per interface: return nil and no error if not found
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBudgets returns every stored budget ordered by scheduled time.
func (s *sessionStore) ListBudgets(ctx context.Context) ([]domain.SessionBudget, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, scheduled_time, target_item_count, query_budget, enabled
		FROM session_budgets ORDER BY scheduled_time, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.SessionBudget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}
	return budgets, nil
}

// RecordRun logs a finished session run.
func (s *sessionStore) RecordRun(ctx context.Context, run *domain.SessionRun) error {
	if run == nil || run.SessionName == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO session_runs (session_name, started_at, ended_at, queries_attempted,
			items_created, items_published, errors, stop_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.SessionName, formatTime(run.StartedAt), formatNullableTime(run.EndedAt), run.QueriesAttempted,
		run.ItemsCreated, run.ItemsPublished, run.Errors, string(run.StopReason))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

const runColumns = `session_name, started_at, ended_at, queries_attempted,
	items_created, items_published, errors, stop_reason`

// LastRun returns the most recent run of a session.
// Returns nil and no error if the session never ran.
func (s *sessionStore) LastRun(ctx context.Context, name string) (*domain.SessionRun, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+runColumns+`
		FROM session_runs WHERE session_name = ? ORDER BY started_at DESC, id DESC LIMIT 1
	`, name)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns recent runs across sessions, most recent first.
func (s *sessionStore) ListRuns(ctx context.Context, limit int) ([]domain.SessionRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+runColumns+`
		FROM session_runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SessionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func scanBudget(row rowScanner) (*domain.SessionBudget, error) {
	var b domain.SessionBudget
	var enabled int
	if err := row.Scan(&b.Name, &b.ScheduledTime, &b.TargetItemCount, &b.QueryBudget, &enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning budget: %w", err)
	}
	b.Enabled = enabled == 1
	return &b, nil
}

func scanRun(row rowScanner) (*domain.SessionRun, error) {
	var run domain.SessionRun
	var startedAt, reason string
	var endedAt sql.NullString
	if err := row.Scan(&run.SessionName, &startedAt, &endedAt, &run.QueriesAttempted,
		&run.ItemsCreated, &run.ItemsPublished, &run.Errors, &reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseNullableTime(endedAt)
	run.StopReason = domain.StopReason(reason)
	return &run, nil
}
