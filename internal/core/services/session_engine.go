package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure SessionEngine implements the interface.
var _ driving.SessionEngine = (*SessionEngine)(nil)

// SessionEngineConfig configures a SessionEngine.
type SessionEngineConfig struct {
	Credentials  domain.Credentials
	DailyQuota   int
	QueryTimeout time.Duration
	Clock        Clock
}

// SessionEngine owns the authenticated upstream session. It enforces the
// daily quota, answers repeated queries from the ledger and serialises all
// submissions in arrival order.
type SessionEngine struct {
	executor driven.QueryExecutor
	ledger   driven.Ledger
	creds    domain.Credentials
	quota    int
	timeout  time.Duration
	now      Clock

	lock fifoMutex

	stateMu sync.RWMutex
	state   domain.SessionState
}

// NewSessionEngine creates an engine in the unauthenticated state.
func NewSessionEngine(executor driven.QueryExecutor, ledger driven.Ledger, cfg SessionEngineConfig) *SessionEngine {
	if cfg.DailyQuota <= 0 {
		cfg.DailyQuota = domain.DefaultDailyQuota
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = domain.DefaultQueryTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &SessionEngine{
		executor: executor,
		ledger:   ledger,
		creds:    cfg.Credentials,
		quota:    cfg.DailyQuota,
		timeout:  cfg.QueryTimeout,
		now:      cfg.Clock,
		state:    domain.SessionUnauthenticated,
	}
}

// State returns the current session state.
func (e *SessionEngine) State() domain.SessionState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

func (e *SessionEngine) setState(s domain.SessionState) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.state = s
}

// DailyQuota returns the configured quota.
func (e *SessionEngine) DailyQuota() int {
	return e.quota
}

// EnsureActive authenticates unless the session is already active.
func (e *SessionEngine) EnsureActive(ctx context.Context) error {
	if err := e.lock.Lock(ctx); err != nil {
		return err
	}
	defer e.lock.Unlock()
	return e.ensureActive(ctx)
}

func (e *SessionEngine) ensureActive(ctx context.Context) error {
	switch e.State() {
	case domain.SessionActive:
		return nil
	case domain.SessionClosed:
		return domain.ErrSessionClosed
	}

	e.setState(domain.SessionAuthenticating)
	logger.Debug("session: authenticating as %s", e.creds)
	if err := e.executor.Authenticate(ctx, e.creds); err != nil {
		e.setState(domain.SessionUnauthenticated)
		return &domain.AuthenticationError{Cause: err}
	}
	e.setState(domain.SessionActive)
	logger.Info("session: authenticated")
	return nil
}

// Execute runs queryText against the upstream, or returns the stored
// response when the same text already succeeded.
func (e *SessionEngine) Execute(ctx context.Context, queryText string) (string, error) {
	if err := e.lock.Lock(ctx); err != nil {
		return "", err
	}
	defer e.lock.Unlock()

	if e.State() == domain.SessionClosed {
		return "", domain.ErrSessionClosed
	}

	hash := domain.ContentHash(queryText)
	rec, err := e.ledger.Lookup(ctx, hash)
	if err != nil {
		return "", domain.WrapStorage("lookup query", err)
	}
	if rec != nil && rec.Succeeded {
		logger.Debug("session: cache hit for %s", hash[:12])
		return rec.RawResponse, nil
	}

	day := domain.DayKey(e.now())
	used, err := e.ledger.QueriesUsedOn(ctx, day)
	if err != nil {
		return "", domain.WrapStorage("read daily quota", err)
	}
	if used >= e.quota {
		return "", &domain.QuotaExceededError{Used: used, Limit: e.quota}
	}

	if err := e.ensureActive(ctx); err != nil {
		return "", err
	}

	text, err := e.submitWithRetry(ctx, queryText)
	if err != nil {
		if recErr := e.record(ctx, hash, queryText, "", false); recErr != nil {
			return "", recErr
		}
		return "", err
	}

	if err := e.record(ctx, hash, queryText, text, true); err != nil {
		return "", err
	}
	count, err := e.ledger.IncrementDailyQuery(ctx, day)
	if err != nil {
		return "", domain.WrapStorage("increment daily quota", err)
	}
	logger.Debug("session: query %d/%d used today", count, e.quota)
	return text, nil
}

// submitWithRetry submits once and, if the upstream reports a lost session,
// re-authenticates and submits one more time.
func (e *SessionEngine) submitWithRetry(ctx context.Context, queryText string) (string, error) {
	text, err := e.submit(ctx, queryText)
	if !errors.Is(err, domain.ErrAuthLost) {
		return text, err
	}

	logger.Warn("session: upstream session lost, re-authenticating")
	e.setState(domain.SessionInvalidated)
	if err := e.ensureActive(ctx); err != nil {
		return "", &domain.SessionLostError{Cause: err}
	}

	text, err = e.submit(ctx, queryText)
	if err != nil {
		if errors.Is(err, domain.ErrAuthLost) {
			e.setState(domain.SessionInvalidated)
		}
		return "", &domain.SessionLostError{Cause: err}
	}
	return text, nil
}

func (e *SessionEngine) submit(ctx context.Context, queryText string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.executor.Submit(sctx, queryText)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, domain.ErrUpstreamTimeout) ||
		(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		return "", &domain.UpstreamTimeoutError{Timeout: e.timeout, Cause: err}
	}
	return "", err
}

func (e *SessionEngine) record(ctx context.Context, hash, queryText, response string, succeeded bool) error {
	rec := &domain.QueryRecord{
		QueryText:   queryText,
		ContentHash: hash,
		RawResponse: response,
		Succeeded:   succeeded,
		Timestamp:   e.now(),
	}
	stored, err := e.ledger.Record(ctx, rec)
	if err != nil {
		return domain.WrapStorage("record query", err)
	}
	if !stored {
		logger.Debug("session: ledger kept existing succeeded record for %s", hash[:12])
	}
	return nil
}

// Close releases the upstream session after the in-flight query finishes.
func (e *SessionEngine) Close() error {
	if err := e.lock.Lock(context.Background()); err != nil {
		return err
	}
	defer e.lock.Unlock()

	if e.State() == domain.SessionClosed {
		return nil
	}
	e.setState(domain.SessionClosed)
	if c, ok := e.executor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
