package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "newsdesk://"

	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Quota, session state, today's counters and configured sessions",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{name}/runs",
		Name:        "session-runs",
		Description: "Recent runs of one session",
		MIMEType:    "application/json",
	}, s.handleSessionRunsResource)
}

type statusInfo struct {
	Today          DayOutput                   `json:"today"`
	DailyQuota     int                         `json:"daily_quota"`
	QuotaRemaining int                         `json:"quota_remaining"`
	SessionState   string                      `json:"session_state"`
	Items          map[string]int              `json:"items"`
	Sessions       []sessionInfo               `json:"sessions"`
	LastRuns       map[string]SessionRunOutput `json:"last_runs,omitempty"`
}

type sessionInfo struct {
	Name        string `json:"name"`
	Time        string `json:"time"`
	TargetItems int    `json:"target_items"`
	QueryBudget int    `json:"query_budget"`
	Enabled     bool   `json:"enabled"`
}

func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	info := statusInfo{
		Today: DayOutput{
			Date:           report.Today.Date,
			QueriesUsed:    report.Today.QueriesUsed,
			ItemsCreated:   report.Today.ItemsCreated,
			ItemsPublished: report.Today.ItemsPublished,
			Errors:         report.Today.Errors,
		},
		DailyQuota:     report.DailyQuota,
		QuotaRemaining: report.QuotaRemaining,
		SessionState:   report.SessionState.String(),
		Items:          make(map[string]int, len(report.ItemsByStatus)),
		Sessions:       make([]sessionInfo, len(report.Sessions)),
	}
	for status, n := range report.ItemsByStatus {
		info.Items[string(status)] = n
	}
	for i, b := range report.Sessions {
		info.Sessions[i] = sessionInfo{
			Name:        b.Name,
			Time:        b.ScheduledTime,
			TargetItems: b.TargetItemCount,
			QueryBudget: b.QueryBudget,
			Enabled:     b.Enabled,
		}
	}
	if len(report.LastRuns) > 0 {
		info.LastRuns = make(map[string]SessionRunOutput, len(report.LastRuns))
		for name, run := range report.LastRuns {
			if run != nil {
				info.LastRuns[name] = toRunOutput(*run)
			}
		}
	}

	return jsonResult(req.Params.URI, info)
}

func (s *Server) handleSessionRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractSessionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.Status.History(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	out := make([]SessionRunOutput, 0)
	for _, run := range runs {
		if run.SessionName == name {
			out = append(out, toRunOutput(run))
		}
	}

	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionName extracts the session name from newsdesk://sessions/{name}/runs.
func extractSessionName(uri string) string {
	prefix := uriScheme + "sessions/"
	suffix := "/runs"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	name := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
