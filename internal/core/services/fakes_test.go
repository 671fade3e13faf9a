package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

// fakeExecutor implements driven.QueryExecutor for testing.
type fakeExecutor struct {
	mu sync.Mutex

	// authErrs are returned by successive Authenticate calls; nil once exhausted.
	authErrs []error
	// submitErrs are returned by successive Submit calls before falling back to respond.
	submitErrs []error
	respond    func(text string) string
	block      chan struct{}

	authCalls   int
	submitCalls int
	submitted   []string
	closed      bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{respond: func(text string) string { return "answer to " + text }}
}

func (f *fakeExecutor) Authenticate(_ context.Context, _ domain.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if len(f.authErrs) > 0 {
		err := f.authErrs[0]
		f.authErrs = f.authErrs[1:]
		return err
	}
	return nil
}

func (f *fakeExecutor) Submit(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.submitCalls++
	f.submitted = append(f.submitted, text)
	block := f.block
	var err error
	if len(f.submitErrs) > 0 {
		err = f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
	}
	respond := f.respond
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return respond(text), nil
}

func (f *fakeExecutor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeExecutor) calls() (auth, submit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls, f.submitCalls
}

// fakeSender implements driven.Sender for testing.
type fakeSender struct {
	mu    sync.Mutex
	fail  map[string]error
	sent  []string
	count int
}

func newFakeSender() *fakeSender {
	return &fakeSender{fail: make(map[string]error)}
}

func (f *fakeSender) Send(_ context.Context, channelID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[channelID]; ok {
		return "", err
	}
	f.count++
	f.sent = append(f.sent, channelID)
	return fmt.Sprintf("msg-%d", f.count), nil
}

// recordingSleeper records requested pauses without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	pauses []time.Duration
	err    error
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses = append(r.pauses, d)
	if r.err != nil {
		return r.err
	}
	return ctx.Err()
}

func (r *recordingSleeper) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pauses)
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// fakeClassifier implements driven.Classifier with a fixed score.
type fakeClassifier struct {
	score    int
	channels []string
}

func (f *fakeClassifier) Classify(queryText, responseText string) domain.ContentItem {
	return domain.ContentItem{
		QueryHash:       domain.ContentHash(queryText),
		Title:           queryText,
		Summary:         responseText,
		Category:        "general",
		ImportanceScore: f.score,
		TargetChannels:  append([]string(nil), f.channels...),
		RawText:         responseText,
		Status:          domain.ItemPending,
	}
}
