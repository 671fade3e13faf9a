package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

type fakeChecker struct {
	name string
	err  error
}

func (c fakeChecker) Name() string                  { return c.name }
func (c fakeChecker) Check(_ context.Context) error { return c.err }

func TestStatusService_Status(t *testing.T) {
	f := newSchedFixture(t, 5, morning(2, 3), morningPool("q1", "q2"))
	ctx := context.Background()
	_, err := f.sched.RunSession(ctx, "morning")
	require.NoError(t, err)
	require.NoError(t, f.sched.syncBudgets(ctx))

	svc := NewStatusService(f.engine, f.store.Ledger(), f.store.ItemStore(), f.store.StatsStore(),
		f.store.SessionStore(), 5, fixedClock(schedNow))

	report, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Today.QueriesUsed)
	assert.Equal(t, 3, report.QuotaRemaining)
	assert.Equal(t, 5, report.DailyQuota)
	assert.Equal(t, domain.SessionActive, report.SessionState)
	assert.Equal(t, 2, report.ItemsByStatus[domain.ItemPublished])
	require.Len(t, report.Sessions, 1)
	require.Contains(t, report.LastRuns, "morning")
	assert.Equal(t, 2, report.LastRuns["morning"].ItemsPublished)
}

func TestStatusService_Health(t *testing.T) {
	store := memory.NewStore()
	engine := NewSessionEngine(newFakeExecutor(), store.Ledger(), SessionEngineConfig{})
	svc := NewStatusService(engine, store.Ledger(), store.ItemStore(), store.StatsStore(), store.SessionStore(), 50, nil,
		store, fakeChecker{name: "telegram", err: errors.New("401 Unauthorized")})

	health := svc.Health(context.Background())
	require.Len(t, health, 3)
	assert.Equal(t, "database", health[0].Name)
	assert.True(t, health[0].Healthy)
	assert.False(t, health[1].Healthy)
	assert.Equal(t, "401 Unauthorized", health[1].Message)
	assert.Equal(t, "upstream session", health[2].Name)
	assert.Equal(t, "unauthenticated", health[2].Message)
}

func TestStatusService_DailyStatsAndHistory(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.StatsStore().AddDaily(ctx, "2024-06-01", domain.DailyStats{ItemsCreated: 1}))
	require.NoError(t, store.StatsStore().AddDaily(ctx, "2024-06-02", domain.DailyStats{ItemsCreated: 2}))
	require.NoError(t, store.SessionStore().RecordRun(ctx, &domain.SessionRun{SessionName: "morning", StartedAt: schedNow}))

	svc := NewStatusService(nil, store.Ledger(), store.ItemStore(), store.StatsStore(), store.SessionStore(), 50, nil)

	days, err := svc.DailyStats(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-06-02", days[0].Date)

	runs, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	assert.Empty(t, svc.Health(ctx))
}
