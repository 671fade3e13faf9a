package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90
)

// RunQueryInput is the input schema for the run_query tool.
type RunQueryInput struct {
	Query   string `json:"query" jsonschema:"the news query to send upstream"`
	Publish bool   `json:"publish,omitempty" jsonschema:"publish the resulting item when it clears the floor"`
}

// ItemOutput describes a created content item.
type ItemOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Category   string   `json:"category"`
	Importance int      `json:"importance"`
	Keywords   []string `json:"keywords,omitempty"`
	Channels   []string `json:"channels,omitempty"`
	Status     string   `json:"status"`
}

// RunSessionInput is the input schema for the run_session tool.
type RunSessionInput struct {
	Name string `json:"name" jsonschema:"the session name, for example morning"`
}

// SessionRunOutput describes one session run.
type SessionRunOutput struct {
	Session          string `json:"session"`
	StartedAt        string `json:"started_at"`
	EndedAt          string `json:"ended_at"`
	QueriesAttempted int    `json:"queries_attempted"`
	ItemsCreated     int    `json:"items_created"`
	ItemsPublished   int    `json:"items_published"`
	Errors           int    `json:"errors"`
	StopReason       string `json:"stop_reason"`
}

// DailyStatsInput is the input schema for the daily_stats tool.
type DailyStatsInput struct {
	Days int `json:"days,omitempty" jsonschema:"number of days to return, newest first (default 7)"`
}

// DailyStatsOutput is the output schema for the daily_stats tool.
type DailyStatsOutput struct {
	Days []DayOutput `json:"days"`
}

// DayOutput holds the counters of one local day.
type DayOutput struct {
	Date           string `json:"date"`
	QueriesUsed    int    `json:"queries_used"`
	ItemsCreated   int    `json:"items_created"`
	ItemsPublished int    `json:"items_published"`
	Errors         int    `json:"errors"`
}

// HealthInput is the (empty) input schema for the health tool.
type HealthInput struct{}

// HealthOutput is the output schema for the health tool.
type HealthOutput struct {
	Healthy    bool              `json:"healthy"`
	Components []ComponentOutput `json:"components"`
}

// ComponentOutput is the health of one component.
type ComponentOutput struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_query",
		Description: "Run one news query upstream and store the classified item",
	}, s.handleRunQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_session",
		Description: "Run a named news session now",
	}, s.handleRunSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "daily_stats",
		Description: "Daily counters for queries, items, publications and errors",
	}, s.handleDailyStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "health",
		Description: "Health of the database, upstream session and message sender",
	}, s.handleHealth)
}

func (s *Server) handleRunQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunQueryInput,
) (*mcp.CallToolResult, ItemOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ItemOutput{}, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}

	item, err := s.ports.Scheduler.RunQuery(ctx, query, input.Publish)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	return nil, toItemOutput(item), nil
}

func (s *Server) handleRunSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunSessionInput,
) (*mcp.CallToolResult, SessionRunOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, SessionRunOutput{}, fmt.Errorf("session name is required: %w", domain.ErrInvalidInput)
	}

	run, err := s.ports.Scheduler.RunSession(ctx, name)
	if err != nil {
		return nil, SessionRunOutput{}, err
	}
	return nil, toRunOutput(*run), nil
}

func (s *Server) handleDailyStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DailyStatsInput,
) (*mcp.CallToolResult, DailyStatsOutput, error) {
	days := input.Days
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	stats, err := s.ports.Status.DailyStats(ctx, days)
	if err != nil {
		return nil, DailyStatsOutput{}, err
	}

	out := DailyStatsOutput{Days: make([]DayOutput, len(stats))}
	for i, d := range stats {
		out.Days[i] = DayOutput{
			Date:           d.Date,
			QueriesUsed:    d.QueriesUsed,
			ItemsCreated:   d.ItemsCreated,
			ItemsPublished: d.ItemsPublished,
			Errors:         d.Errors,
		}
	}
	return nil, out, nil
}

func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, HealthOutput, error) {
	report := s.ports.Status.Health(ctx)

	out := HealthOutput{Healthy: true, Components: make([]ComponentOutput, len(report))}
	for i, c := range report {
		out.Components[i] = ComponentOutput{Name: c.Name, Healthy: c.Healthy, Message: c.Message}
		if !c.Healthy {
			out.Healthy = false
		}
	}
	return nil, out, nil
}

func toItemOutput(item *domain.ContentItem) ItemOutput {
	if item == nil {
		return ItemOutput{}
	}
	return ItemOutput{
		ID:         item.ID,
		Title:      item.Title,
		Summary:    item.Summary,
		Category:   item.Category,
		Importance: item.ImportanceScore,
		Keywords:   item.Keywords,
		Channels:   item.TargetChannels,
		Status:     string(item.Status),
	}
}

func toRunOutput(run domain.SessionRun) SessionRunOutput {
	return SessionRunOutput{
		Session:          run.SessionName,
		StartedAt:        formatTime(run.StartedAt),
		EndedAt:          formatTime(run.EndedAt),
		QueriesAttempted: run.QueriesAttempted,
		ItemsCreated:     run.ItemsCreated,
		ItemsPublished:   run.ItemsPublished,
		Errors:           run.Errors,
		StopReason:       string(run.StopReason),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
