package domain

import (
	"fmt"
	"time"
)

// SessionBudget configures one scheduled batch run (e.g. "morning").
// It is read by the scheduler and never mutated by the pipeline.
type SessionBudget struct {
	// Name identifies the session and selects its query pool.
	Name string

	// ScheduledTime is the local trigger time in HH:MM form.
	ScheduledTime string

	// TargetItemCount stops the run once this many items were created.
	TargetItemCount int

	// QueryBudget caps the number of queries attempted in one run.
	QueryBudget int

	// Enabled sessions are triggered by the scheduler; disabled ones never are.
	Enabled bool
}

// Clock returns the hour and minute of ScheduledTime.
func (b SessionBudget) Clock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", b.ScheduledTime)
	if err != nil {
		return 0, 0, fmt.Errorf("session %s: invalid scheduled time %q: %w", b.Name, b.ScheduledTime, ErrInvalidInput)
	}
	return t.Hour(), t.Minute(), nil
}

// TriggerOn returns the trigger instant on the calendar day of ref, in ref's location.
func (b SessionBudget) TriggerOn(ref time.Time) (time.Time, error) {
	hour, minute, err := b.Clock()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, ref.Location()), nil
}

// StopReason explains why a session run ended.
type StopReason string

// Stop reasons.
const (
	StopTargetReached       StopReason = "target_reached"
	StopCandidatesExhausted StopReason = "candidates_exhausted"
	StopBudgetConsumed      StopReason = "budget_consumed"
	StopQuotaExceeded       StopReason = "quota_exceeded"
	StopShutdown            StopReason = "shutdown"
	StopFatal               StopReason = "fatal_error"
)

// SessionRun is the recorded outcome of one session run.
type SessionRun struct {
	SessionName      string
	StartedAt        time.Time
	EndedAt          time.Time
	QueriesAttempted int
	ItemsCreated     int
	ItemsPublished   int
	Errors           int
	StopReason       StopReason
}

// Stats converts the run into a DailyStats delta.
// Queries are counted by the ledger as they happen, so QueriesUsed stays zero.
func (r SessionRun) Stats() DailyStats {
	return DailyStats{
		ItemsCreated:   r.ItemsCreated,
		ItemsPublished: r.ItemsPublished,
		Errors:         r.Errors,
	}
}

// SessionState is the state of the authenticated upstream session.
type SessionState int

// Session states.
const (
	SessionUnauthenticated SessionState = iota
	SessionAuthenticating
	SessionActive
	SessionInvalidated
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticating:
		return "authenticating"
	case SessionActive:
		return "active"
	case SessionInvalidated:
		return "invalidated"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}
