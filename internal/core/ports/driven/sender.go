package driven

import "context"

// Sender delivers a formatted message to one external channel.
type Sender interface {
	// Send posts text to the channel and returns the external message id.
	// Returns domain.ErrRateLimited when the platform throttled the call.
	Send(ctx context.Context, channelID, text string) (string, error)
}

// HealthChecker is implemented by adapters that can verify their connectivity.
type HealthChecker interface {
	// Name identifies the component in health reports.
	Name() string

	// Check returns nil when the component is reachable.
	Check(ctx context.Context) error
}
