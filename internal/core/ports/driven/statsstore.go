package driven

import (
	"context"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// StatsStore persists per-day counters.
type StatsStore interface {
	// AddDaily adds delta to the counters of a day, creating the row if needed.
	AddDaily(ctx context.Context, day string, delta domain.DailyStats) error

	// GetDaily returns the counters of a day. Unknown days return zero counters.
	GetDaily(ctx context.Context, day string) (domain.DailyStats, error)

	// ListDaily returns the most recent days, newest first.
	ListDaily(ctx context.Context, limit int) ([]domain.DailyStats, error)
}
