package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
)

func TestServer_handleRunQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns created item", func(t *testing.T) {
		sched := &mockScheduler{item: &domain.ContentItem{
			ID:              "item-1",
			Title:           "OpenAI ships a model",
			Category:        "ai",
			ImportanceScore: 8,
			Keywords:        []string{"OpenAI"},
			TargetChannels:  []string{"it_news"},
			Status:          domain.ItemPublished,
		}}
		server := newTestServer(sched, &mockStatusService{})

		_, out, err := server.handleRunQuery(ctx, nil, RunQueryInput{Query: "  AI news ", Publish: true})

		require.NoError(t, err)
		assert.Equal(t, "AI news", sched.lastQuery)
		assert.True(t, sched.lastPublish)
		assert.Equal(t, "item-1", out.ID)
		assert.Equal(t, 8, out.Importance)
		assert.Equal(t, "published", out.Status)
		assert.Equal(t, []string{"it_news"}, out.Channels)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		server := newTestServer(&mockScheduler{}, &mockStatusService{})

		_, _, err := server.handleRunQuery(ctx, nil, RunQueryInput{Query: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("propagates quota error", func(t *testing.T) {
		sched := &mockScheduler{err: &domain.QuotaExceededError{Used: 50, Limit: 50}}
		server := newTestServer(sched, &mockStatusService{})

		_, _, err := server.handleRunQuery(ctx, nil, RunQueryInput{Query: "AI news"})
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	})
}

func TestServer_handleRunSession(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("returns run outcome", func(t *testing.T) {
		sched := &mockScheduler{run: &domain.SessionRun{
			SessionName:      "morning",
			StartedAt:        started,
			EndedAt:          started.Add(5 * time.Minute),
			QueriesAttempted: 4,
			ItemsCreated:     3,
			ItemsPublished:   2,
			StopReason:       domain.StopTargetReached,
		}}
		server := newTestServer(sched, &mockStatusService{})

		_, out, err := server.handleRunSession(ctx, nil, RunSessionInput{Name: "morning"})

		require.NoError(t, err)
		assert.Equal(t, "morning", sched.lastSession)
		assert.Equal(t, "morning", out.Session)
		assert.Equal(t, "2026-03-02T09:00:00Z", out.StartedAt)
		assert.Equal(t, 4, out.QueriesAttempted)
		assert.Equal(t, "target_reached", out.StopReason)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		server := newTestServer(&mockScheduler{}, &mockStatusService{})

		_, _, err := server.handleRunSession(ctx, nil, RunSessionInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("disabled session", func(t *testing.T) {
		server := newTestServer(&mockScheduler{err: domain.ErrSessionDisabled}, &mockStatusService{})

		_, _, err := server.handleRunSession(ctx, nil, RunSessionInput{Name: "night"})
		assert.ErrorIs(t, err, domain.ErrSessionDisabled)
	})
}

func TestServer_handleDailyStats(t *testing.T) {
	ctx := context.Background()

	t.Run("maps counters", func(t *testing.T) {
		status := &mockStatusService{stats: []domain.DailyStats{
			{Date: "2026-03-02", QueriesUsed: 12, ItemsCreated: 5, ItemsPublished: 3, Errors: 1},
			{Date: "2026-03-01", QueriesUsed: 8},
		}}
		server := newTestServer(&mockScheduler{}, status)

		_, out, err := server.handleDailyStats(ctx, nil, DailyStatsInput{Days: 2})

		require.NoError(t, err)
		require.Len(t, out.Days, 2)
		assert.Equal(t, 2, status.lastDays)
		assert.Equal(t, "2026-03-02", out.Days[0].Date)
		assert.Equal(t, 12, out.Days[0].QueriesUsed)
		assert.Equal(t, 1, out.Days[0].Errors)
	})

	t.Run("default and maximum days", func(t *testing.T) {
		status := &mockStatusService{}
		server := newTestServer(&mockScheduler{}, status)

		_, _, err := server.handleDailyStats(ctx, nil, DailyStatsInput{})
		require.NoError(t, err)
		assert.Equal(t, defaultStatsDays, status.lastDays)

		_, _, err = server.handleDailyStats(ctx, nil, DailyStatsInput{Days: 1000})
		require.NoError(t, err)
		assert.Equal(t, maxStatsDays, status.lastDays)
	})

	t.Run("returns error", func(t *testing.T) {
		server := newTestServer(&mockScheduler{}, &mockStatusService{err: errors.New("db down")})

		_, _, err := server.handleDailyStats(ctx, nil, DailyStatsInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestServer_handleHealth(t *testing.T) {
	ctx := context.Background()

	t.Run("all healthy", func(t *testing.T) {
		status := &mockStatusService{health: []driving.ComponentHealth{
			{Name: "database", Healthy: true},
			{Name: "telegram", Healthy: true},
		}}
		server := newTestServer(&mockScheduler{}, status)

		_, out, err := server.handleHealth(ctx, nil, HealthInput{})

		require.NoError(t, err)
		assert.True(t, out.Healthy)
		assert.Len(t, out.Components, 2)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		status := &mockStatusService{health: []driving.ComponentHealth{
			{Name: "database", Healthy: true},
			{Name: "telegram", Healthy: false, Message: "unauthorized"},
		}}
		server := newTestServer(&mockScheduler{}, status)

		_, out, err := server.handleHealth(ctx, nil, HealthInput{})

		require.NoError(t, err)
		assert.False(t, out.Healthy)
		assert.Equal(t, "unauthorized", out.Components[1].Message)
	})
}

func TestToItemOutput_Nil(t *testing.T) {
	assert.Equal(t, ItemOutput{}, toItemOutput(nil))
}
