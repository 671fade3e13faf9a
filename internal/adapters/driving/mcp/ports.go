package mcp

import (
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Scheduler runs sessions and ad-hoc queries.
	Scheduler driving.Scheduler

	// Status reports health, counters and history.
	Status driving.StatusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Scheduler == nil {
		return ErrMissingScheduler
	}
	if p.Status == nil {
		return ErrMissingStatusService
	}
	return nil
}
