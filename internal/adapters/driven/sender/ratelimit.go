// Package sender provides decorators shared by every message sender.
package sender

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure RateLimited implements the interfaces.
var (
	_ driven.Sender        = (*RateLimited)(nil)
	_ driven.HealthChecker = (*RateLimited)(nil)
)

// DefaultBackoff applies when a throttled send carries no retry delay.
const DefaultBackoff = 60 * time.Second

// RateLimitConfig holds rate limiting configuration per channel.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit. Zero disables limiting.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size (default 1).
	BurstSize int
}

// retryDelayer is implemented by send errors that carry a platform backoff.
type retryDelayer interface {
	RetryDelay() time.Duration
}

// RateLimited wraps a Sender with one token bucket per channel.
// A throttled send pauses that channel until the platform's retry delay passes.
type RateLimited struct {
	next driven.Sender
	cfg  RateLimitConfig

	mu       sync.Mutex
	channels map[string]*channelLimiter
}

// NewRateLimited creates a rate-limiting decorator around next.
func NewRateLimited(next driven.Sender, cfg RateLimitConfig) *RateLimited {
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &RateLimited{
		next:     next,
		cfg:      cfg,
		channels: make(map[string]*channelLimiter),
	}
}

// Send waits for the channel's limiter, then delegates.
func (r *RateLimited) Send(ctx context.Context, channelID, text string) (string, error) {
	lim := r.limiter(channelID)
	if err := lim.Wait(ctx); err != nil {
		return "", err
	}

	id, err := r.next.Send(ctx, channelID, text)
	if err != nil {
		var rd retryDelayer
		if errors.As(err, &rd) {
			lim.RecordRateLimitError(rd.RetryDelay())
			logger.Warn("sender: channel %s throttled for %s", channelID, rd.RetryDelay())
		}
		return "", err
	}
	return id, nil
}

// Name delegates to the wrapped sender when it reports health.
func (r *RateLimited) Name() string {
	if hc, ok := r.next.(driven.HealthChecker); ok {
		return hc.Name()
	}
	return "sender"
}

// Check delegates to the wrapped sender when it reports health.
func (r *RateLimited) Check(ctx context.Context) error {
	if hc, ok := r.next.(driven.HealthChecker); ok {
		return hc.Check(ctx)
	}
	return nil
}

func (r *RateLimited) limiter(channelID string) *channelLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.channels[channelID]
	if !ok {
		limit := rate.Inf
		if r.cfg.RequestsPerSecond > 0 {
			limit = rate.Limit(r.cfg.RequestsPerSecond)
		}
		lim = &channelLimiter{limiter: rate.NewLimiter(limit, r.cfg.BurstSize)}
		r.channels[channelID] = lim
	}
	return lim
}

// channelLimiter is a token bucket with a backoff window for 429 responses.
type channelLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (c *channelLimiter) Wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return c.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period for the channel.
func (c *channelLimiter) RecordRateLimitError(retryAfter time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}
	c.retryAt = time.Now().Add(retryAfter)
}
