// Package browser provides a query executor that drives the upstream
// assistant's web interface through headless Chrome.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure Executor implements the interfaces.
var (
	_ driven.QueryExecutor = (*Executor)(nil)
	_ driven.HealthChecker = (*Executor)(nil)
)

// Default timings.
const (
	DefaultStepTimeout    = 15 * time.Second
	DefaultSettleInterval = 1500 * time.Millisecond
	DefaultSignInText     = "Sign In"
)

// Config configures the browser executor.
type Config struct {
	// BaseURL is the assistant's start page.
	BaseURL string

	// Headless runs Chrome without a window.
	Headless bool

	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local Chrome.
	RemoteURL string

	// Selectors locate the page elements used to drive the conversation.
	PromptSelector   string
	SubmitSelector   string
	ResponseSelector string
	LoginEmailSel    string
	LoginPasswordSel string
	LoginSubmitSel   string

	// SignInText is the label of the button that opens the login form.
	SignInText string

	// StepTimeout bounds each navigation or element lookup.
	StepTimeout time.Duration

	// SettleInterval is how long the answer must stay unchanged to count as complete.
	SettleInterval time.Duration
}

// ConfigFromSettings maps upstream settings to an executor config.
func ConfigFromSettings(s domain.UpstreamSettings) Config {
	return Config{
		BaseURL:          s.BaseURL,
		Headless:         s.Headless,
		PromptSelector:   s.PromptSelector,
		SubmitSelector:   s.SubmitSelector,
		ResponseSelector: s.ResponseSelector,
		LoginEmailSel:    s.LoginEmailSel,
		LoginPasswordSel: s.LoginPasswordSel,
		LoginSubmitSel:   s.LoginSubmitSel,
	}
}

func (c *Config) defaults() {
	d := domain.DefaultSettings().Upstream
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.PromptSelector == "" {
		c.PromptSelector = d.PromptSelector
	}
	if c.SubmitSelector == "" {
		c.SubmitSelector = d.SubmitSelector
	}
	if c.ResponseSelector == "" {
		c.ResponseSelector = d.ResponseSelector
	}
	if c.LoginEmailSel == "" {
		c.LoginEmailSel = d.LoginEmailSel
	}
	if c.LoginPasswordSel == "" {
		c.LoginPasswordSel = d.LoginPasswordSel
	}
	if c.LoginSubmitSel == "" {
		c.LoginSubmitSel = d.LoginSubmitSel
	}
	if c.SignInText == "" {
		c.SignInText = DefaultSignInText
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = DefaultStepTimeout
	}
	if c.SettleInterval <= 0 {
		c.SettleInterval = DefaultSettleInterval
	}
}

// Executor drives one browser tab. It is not safe for concurrent queries;
// callers serialise Submit.
type Executor struct {
	cfg Config
	x   *extractor

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	closed  bool
}

// New creates an executor. Chrome is started lazily by Authenticate.
func New(cfg Config) *Executor {
	cfg.defaults()
	return &Executor{cfg: cfg, x: newExtractor()}
}

// Name identifies the executor in health reports.
func (e *Executor) Name() string {
	return "browser"
}

// Check reports whether a started browser is responsive. Chrome starts on
// first use, so an idle executor is healthy.
func (e *Executor) Check(ctx context.Context) error {
	e.mu.Lock()
	b, closed := e.browser, e.closed
	e.mu.Unlock()
	if closed {
		return domain.ErrSessionClosed
	}
	if b == nil {
		return nil
	}
	if _, err := b.Context(ctx).Version(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

// Authenticate opens the assistant and signs in. Empty credentials skip the
// login form and only require the prompt to be usable.
func (e *Executor) Authenticate(ctx context.Context, creds domain.Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrSessionClosed
	}
	if err := e.ensureBrowser(ctx); err != nil {
		return err
	}
	if e.page != nil {
		_ = e.page.Close()
		e.page = nil
	}

	page, err := stealth.Page(e.browser)
	if err != nil {
		return fmt.Errorf("browser: create tab: %w", err)
	}
	e.page = page

	if err := e.navigate(ctx, e.cfg.BaseURL); err != nil {
		return err
	}

	if !creds.IsZero() {
		if err := e.login(ctx, creds); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
		}
	}

	if _, err := e.element(ctx, e.cfg.PromptSelector); err != nil {
		return fmt.Errorf("%w: prompt not available after sign-in: %v", domain.ErrAuthFailed, err)
	}
	logger.Debug("browser: authenticated at %s", e.cfg.BaseURL)
	return nil
}

// Submit types a query into the prompt and waits for the answer to settle.
func (e *Executor) Submit(ctx context.Context, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", domain.ErrSessionClosed
	}
	if e.page == nil {
		return "", fmt.Errorf("%w: no open tab", domain.ErrAuthLost)
	}

	if e.loginVisible() {
		return "", fmt.Errorf("%w: login form shown", domain.ErrAuthLost)
	}

	prompt, err := e.element(ctx, e.cfg.PromptSelector)
	if err != nil {
		if ctx.Err() != nil {
			return "", timeoutOr(ctx, err)
		}
		return "", fmt.Errorf("%w: prompt not found: %v", domain.ErrAuthLost, err)
	}

	before := e.answerCount()
	logger.Debug("browser: submitting %q", describe(text))

	if err := prompt.SelectAllText(); err != nil {
		logger.Debug("browser: select prompt text: %v", err)
	}
	if err := prompt.Input(text); err != nil {
		return "", fmt.Errorf("browser: type query: %w", err)
	}
	if err := e.send(ctx, prompt); err != nil {
		return "", err
	}

	answer, err := e.waitAnswer(ctx, before)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Close shuts the tab and Chrome down.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if e.page != nil {
		if err := e.page.Close(); err != nil {
			errs = append(errs, err)
		}
		e.page = nil
	}
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		e.browser = nil
	}
	if e.lnch != nil {
		e.lnch.Cleanup()
		e.lnch = nil
	}
	return errors.Join(errs...)
}

func (e *Executor) ensureBrowser(ctx context.Context) error {
	if e.browser != nil {
		return nil
	}

	wsURL := e.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(e.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled").
			Set("window-size", "1920,1080")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		e.lnch = l
		logger.Debug("browser: launched local chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if e.lnch != nil {
			e.lnch.Cleanup()
			e.lnch = nil
		}
		return fmt.Errorf("browser: connect: %w", err)
	}
	e.browser = b
	return nil
}

func (e *Executor) navigate(ctx context.Context, url string) error {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()

	p := e.page.Context(sctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		logger.Warn("browser: wait load %s: %v", url, err)
	}
	return nil
}

func (e *Executor) login(ctx context.Context, creds domain.Credentials) error {
	if !e.loginVisible() {
		sctx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
		btn, err := e.page.Context(sctx).ElementR("button", e.cfg.SignInText)
		cancel()
		if err != nil {
			return fmt.Errorf("sign-in button: %w", err)
		}
		if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("open sign-in: %w", err)
		}
	}

	email, err := e.element(ctx, e.cfg.LoginEmailSel)
	if err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := email.Input(creds.Email); err != nil {
		return fmt.Errorf("type email: %w", err)
	}

	password, err := e.element(ctx, e.cfg.LoginPasswordSel)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := password.Input(creds.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	submit, err := e.element(ctx, e.cfg.LoginSubmitSel)
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	return nil
}

// send clicks the submit button, or presses Enter when there is none.
func (e *Executor) send(ctx context.Context, prompt *rod.Element) error {
	if has, btn, err := e.page.Has(e.cfg.SubmitSelector); err == nil && has {
		if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("browser: submit query: %w", err)
		}
		return nil
	}
	if err := prompt.Context(ctx).Type(input.Enter); err != nil {
		return fmt.Errorf("browser: submit query: %w", err)
	}
	return nil
}

// waitAnswer polls until a new answer block appears and its text stops changing.
func (e *Executor) waitAnswer(ctx context.Context, before int) (string, error) {
	ticker := time.NewTicker(e.cfg.SettleInterval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return "", timeoutOr(ctx, ctx.Err())
		case <-ticker.C:
		}

		answers, err := e.page.Elements(e.cfg.ResponseSelector)
		if err != nil || len(answers) <= before {
			if e.loginVisible() {
				return "", fmt.Errorf("%w: login form shown while waiting", domain.ErrAuthLost)
			}
			continue
		}

		raw, err := answers.Last().HTML()
		if err != nil {
			continue
		}
		text := e.x.Text(raw)
		if text != "" && text == last {
			return text, nil
		}
		last = text
	}
}

func (e *Executor) element(ctx context.Context, selector string) (*rod.Element, error) {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.StepTimeout)
	defer cancel()
	return e.page.Context(sctx).Element(selector)
}

func (e *Executor) answerCount() int {
	answers, err := e.page.Elements(e.cfg.ResponseSelector)
	if err != nil {
		return 0
	}
	return len(answers)
}

func (e *Executor) loginVisible() bool {
	has, _, err := e.page.Has(e.cfg.LoginPasswordSel)
	return err == nil && has
}

// timeoutOr maps an expired deadline to domain.ErrUpstreamTimeout.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	if err == nil {
		err = ctx.Err()
	}
	return fmt.Errorf("browser: %w", err)
}

// describe is used in debug logs to keep query text short.
func describe(text string) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return text
}
