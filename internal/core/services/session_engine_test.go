package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var engineNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newTestEngine(exec *fakeExecutor, ledger *memory.Ledger, quota int) *SessionEngine {
	return NewSessionEngine(exec, ledger, SessionEngineConfig{
		Credentials:  domain.Credentials{Email: "bot@example.com", Password: "pw"},
		DailyQuota:   quota,
		QueryTimeout: time.Second,
		Clock:        fixedClock(engineNow),
	})
}

func TestSessionEngine_ExecuteAuthenticatesLazily(t *testing.T) {
	exec := newFakeExecutor()
	e := newTestEngine(exec, memory.NewLedger(nil), 10)
	assert.Equal(t, domain.SessionUnauthenticated, e.State())

	text, err := e.Execute(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "answer to q1", text)
	assert.Equal(t, domain.SessionActive, e.State())

	_, err = e.Execute(context.Background(), "q2")
	require.NoError(t, err)
	auth, submit := exec.calls()
	assert.Equal(t, 1, auth)
	assert.Equal(t, 2, submit)
}

func TestSessionEngine_DuplicateServedFromCache(t *testing.T) {
	exec := newFakeExecutor()
	ledger := memory.NewLedger(nil)
	e := newTestEngine(exec, ledger, 10)
	ctx := context.Background()

	first, err := e.Execute(ctx, "same text")
	require.NoError(t, err)
	used, _ := ledger.QueriesUsedOn(ctx, domain.DayKey(engineNow))
	require.Equal(t, 1, used)

	second, err := e.Execute(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	used, _ = ledger.QueriesUsedOn(ctx, domain.DayKey(engineNow))
	assert.Equal(t, 1, used)
	_, submit := exec.calls()
	assert.Equal(t, 1, submit)
}

func TestSessionEngine_QuotaScenario(t *testing.T) {
	exec := newFakeExecutor()
	e := newTestEngine(exec, memory.NewLedger(nil), 2)
	ctx := context.Background()

	_, err := e.Execute(ctx, "query one")
	require.NoError(t, err)
	_, err = e.Execute(ctx, "query two")
	require.NoError(t, err)

	_, err = e.Execute(ctx, "query three")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	var qe *domain.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 2, qe.Used)
	assert.Equal(t, 2, qe.Limit)

	cached, err := e.Execute(ctx, "query one")
	require.NoError(t, err)
	assert.Equal(t, "answer to query one", cached)

	_, submit := exec.calls()
	assert.Equal(t, 2, submit)
}

func TestSessionEngine_AuthenticationFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.authErrs = []error{domain.ErrAuthFailed}
	e := newTestEngine(exec, memory.NewLedger(nil), 10)
	ctx := context.Background()

	_, err := e.Execute(ctx, "q")
	require.Error(t, err)
	var authErr *domain.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.SessionUnauthenticated, e.State())
	_, submit := exec.calls()
	assert.Zero(t, submit)

	// Next call retries authentication.
	_, err = e.Execute(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, e.State())
}

func TestSessionEngine_TimeoutKeepsSessionActive(t *testing.T) {
	exec := newFakeExecutor()
	exec.submitErrs = []error{domain.ErrUpstreamTimeout}
	ledger := memory.NewLedger(nil)
	e := newTestEngine(exec, ledger, 10)
	ctx := context.Background()

	_, err := e.Execute(ctx, "slow")
	require.Error(t, err)
	var te *domain.UpstreamTimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, time.Second, te.Timeout)
	assert.Equal(t, domain.SessionActive, e.State())

	rec, err := ledger.Lookup(ctx, domain.ContentHash("slow"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Succeeded)

	used, _ := ledger.QueriesUsedOn(ctx, domain.DayKey(engineNow))
	assert.Zero(t, used)

	// A failed record does not block a retry.
	text, err := e.Execute(ctx, "slow")
	require.NoError(t, err)
	assert.Equal(t, "answer to slow", text)
}

func TestSessionEngine_DeadlineBecomesTimeout(t *testing.T) {
	exec := newFakeExecutor()
	exec.block = make(chan struct{})
	e := NewSessionEngine(exec, memory.NewLedger(nil), SessionEngineConfig{
		DailyQuota:   10,
		QueryTimeout: 20 * time.Millisecond,
		Clock:        fixedClock(engineNow),
	})

	_, err := e.Execute(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	assert.Equal(t, domain.SessionActive, e.State())
}

func TestSessionEngine_AuthLostRetriesOnce(t *testing.T) {
	exec := newFakeExecutor()
	exec.submitErrs = []error{domain.ErrAuthLost}
	e := newTestEngine(exec, memory.NewLedger(nil), 10)

	text, err := e.Execute(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answer to q", text)

	auth, submit := exec.calls()
	assert.Equal(t, 2, auth)
	assert.Equal(t, 2, submit)
	assert.Equal(t, domain.SessionActive, e.State())
}

func TestSessionEngine_AuthLostTwiceIsSessionLost(t *testing.T) {
	exec := newFakeExecutor()
	exec.submitErrs = []error{domain.ErrAuthLost, domain.ErrAuthLost}
	e := newTestEngine(exec, memory.NewLedger(nil), 10)

	_, err := e.Execute(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionLost)
	assert.Equal(t, domain.SessionInvalidated, e.State())

	_, submit := exec.calls()
	assert.Equal(t, 2, submit)
}

func TestSessionEngine_ReauthFailureIsSessionLost(t *testing.T) {
	exec := newFakeExecutor()
	exec.submitErrs = []error{domain.ErrAuthLost}
	exec.authErrs = []error{nil, errors.New("captcha")}
	e := newTestEngine(exec, memory.NewLedger(nil), 10)

	_, err := e.Execute(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSessionLost)
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Equal(t, domain.SessionUnauthenticated, e.State())
}

func TestSessionEngine_StorageErrorIsFatal(t *testing.T) {
	exec := newFakeExecutor()
	ledger := memory.NewLedger(nil)
	ledger.Err = errors.New("database is locked")
	e := newTestEngine(exec, ledger, 10)

	_, err := e.Execute(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, domain.IsFatal(err))
	_, submit := exec.calls()
	assert.Zero(t, submit)
}

func TestSessionEngine_SerialisesInArrivalOrder(t *testing.T) {
	exec := newFakeExecutor()
	exec.block = make(chan struct{})
	e := newTestEngine(exec, memory.NewLedger(nil), 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = e.Execute(ctx, "first")
	}()
	require.Eventually(t, func() bool { _, s := exec.calls(); return s == 1 }, time.Second, time.Millisecond)

	for _, q := range []string{"second", "third"} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, _ = e.Execute(ctx, q)
		}(q)
		want := map[string]int{"second": 1, "third": 2}[q]
		require.Eventually(t, func() bool { return e.lock.queued() == want }, time.Second, time.Millisecond)
	}

	_, submit := exec.calls()
	assert.Equal(t, 1, submit)

	close(exec.block)
	wg.Wait()

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Equal(t, []string{"first", "second", "third"}, exec.submitted)
}

func TestSessionEngine_WaiterCancellation(t *testing.T) {
	exec := newFakeExecutor()
	exec.block = make(chan struct{})
	e := newTestEngine(exec, memory.NewLedger(nil), 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Execute(context.Background(), "holder")
	}()
	require.Eventually(t, func() bool { _, s := exec.calls(); return s == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Execute(ctx, "waiter")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.lock.queued())

	close(exec.block)
	<-done
}

func TestSessionEngine_Close(t *testing.T) {
	exec := newFakeExecutor()
	e := newTestEngine(exec, memory.NewLedger(nil), 10)

	require.NoError(t, e.Close())
	assert.Equal(t, domain.SessionClosed, e.State())
	assert.True(t, exec.closed)

	_, err := e.Execute(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.ErrorIs(t, e.EnsureActive(context.Background()), domain.ErrSessionClosed)
	assert.NoError(t, e.Close())
}
