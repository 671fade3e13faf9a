package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	item        *domain.ContentItem
	run         *domain.SessionRun
	err         error
	lastQuery   string
	lastPublish bool
	lastSession string
	started     bool
	updates     int
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.started = true
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) RunSession(_ context.Context, name string) (*domain.SessionRun, error) {
	m.lastSession = name
	return m.run, m.err
}

func (m *mockScheduler) RunQuery(_ context.Context, queryText string, publish bool) (*domain.ContentItem, error) {
	m.lastQuery = queryText
	m.lastPublish = publish
	return m.item, m.err
}

func (m *mockScheduler) DueSessions(_ context.Context, _ time.Time) ([]domain.SessionBudget, error) {
	return nil, m.err
}

func (m *mockScheduler) UpdateSessions(_ []domain.SessionBudget, _ domain.QueryPool) {
	m.updates++
}

// mockPublisher implements driving.Publisher for testing.
type mockPublisher struct {
	published int
	err       error
	lastLimit int
}

func (m *mockPublisher) Publish(_ context.Context, _ *domain.ContentItem) (bool, error) {
	return m.err == nil, m.err
}

func (m *mockPublisher) PublishPending(_ context.Context, limit int) (int, error) {
	m.lastLimit = limit
	return m.published, m.err
}

func (m *mockPublisher) FormatMessage(item *domain.ContentItem) string {
	return item.Title
}

// mockStatusService implements driving.StatusService for testing.
type mockStatusService struct {
	health   []driving.ComponentHealth
	stats    []domain.DailyStats
	runs     []domain.SessionRun
	report   *driving.StatusReport
	err      error
	lastDays int
}

func (m *mockStatusService) Health(_ context.Context) []driving.ComponentHealth {
	return m.health
}

func (m *mockStatusService) DailyStats(_ context.Context, days int) ([]domain.DailyStats, error) {
	m.lastDays = days
	return m.stats, m.err
}

func (m *mockStatusService) History(_ context.Context, _ int) ([]domain.SessionRun, error) {
	return m.runs, m.err
}

func (m *mockStatusService) Status(_ context.Context) (*driving.StatusReport, error) {
	return m.report, m.err
}

// setupApp installs a test application and restores the previous one.
func setupApp(t *testing.T, a *App) {
	t.Helper()
	old := app
	app = a
	t.Cleanup(func() { app = old })
}

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func stringsReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}
