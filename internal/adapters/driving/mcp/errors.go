// Package mcp provides an MCP (Model Context Protocol) server adapter for newsdesk.
// It lets AI assistants run queries and sessions and read pipeline counters.
package mcp

import "errors"

var (
	// ErrMissingScheduler is returned when the scheduler is not provided.
	ErrMissingScheduler = errors.New("mcp: scheduler is required")

	// ErrMissingStatusService is returned when the status service is not provided.
	ErrMissingStatusService = errors.New("mcp: status service is required")
)
