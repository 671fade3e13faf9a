package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

func TestNew_AppliesDefaults(t *testing.T) {
	e := New(Config{})
	d := domain.DefaultSettings().Upstream

	assert.Equal(t, d.BaseURL, e.cfg.BaseURL)
	assert.Equal(t, d.PromptSelector, e.cfg.PromptSelector)
	assert.Equal(t, d.ResponseSelector, e.cfg.ResponseSelector)
	assert.Equal(t, DefaultSignInText, e.cfg.SignInText)
	assert.Equal(t, DefaultStepTimeout, e.cfg.StepTimeout)
	assert.Equal(t, DefaultSettleInterval, e.cfg.SettleInterval)
}

func TestConfigFromSettings(t *testing.T) {
	s := domain.UpstreamSettings{
		BaseURL:          "https://example.test",
		Headless:         true,
		PromptSelector:   "#q",
		SubmitSelector:   "#go",
		ResponseSelector: ".answer",
	}
	cfg := ConfigFromSettings(s)

	assert.Equal(t, "https://example.test", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "#q", cfg.PromptSelector)
	assert.Equal(t, "#go", cfg.SubmitSelector)
	assert.Equal(t, ".answer", cfg.ResponseSelector)
}

func TestExecutor_Name(t *testing.T) {
	assert.Equal(t, "browser", New(Config{}).Name())
}

func TestExecutor_CheckNotStarted(t *testing.T) {
	assert.NoError(t, New(Config{}).Check(context.Background()))
}

func TestExecutor_SubmitWithoutTab(t *testing.T) {
	_, err := New(Config{}).Submit(context.Background(), "news")
	assert.ErrorIs(t, err, domain.ErrAuthLost)
}

func TestExecutor_Closed(t *testing.T) {
	e := New(Config{})
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err := e.Submit(context.Background(), "news")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	err = e.Authenticate(context.Background(), domain.Credentials{})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	assert.ErrorIs(t, e.Check(context.Background()), domain.ErrSessionClosed)
}

func TestTimeoutOr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := timeoutOr(ctx, errors.New("context deadline exceeded"))
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)

	cctx, ccancel := context.WithCancel(context.Background())
	ccancel()
	err = timeoutOr(cctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "short", describe("  short "))

	long := fmt.Sprintf("%060d", 0)
	got := describe(long)
	assert.Len(t, got, 53)
	assert.Equal(t, "...", got[50:])
}
