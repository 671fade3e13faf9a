package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Default values applied when configuration omits a setting.
const (
	DefaultDailyQuota              = 50
	DefaultPublishFloor            = 6
	DefaultHighImportanceThreshold = 8
	DefaultQueryTimeout            = 45 * time.Second
	DefaultQueryPacing             = 30 * time.Second
	DefaultSendPacing              = 2 * time.Second
	DefaultCheckInterval           = time.Minute
	DefaultCatchUpWindow           = 15 * time.Minute
	DefaultCandidateMultiplier     = 3
	DefaultFallbackPoolSize        = 10
	DefaultUnknownQueryBudget      = 15
	DefaultUnknownTargetItems      = 3
	DefaultChannelKey              = "it_news"

	// MaxDailyQuota bounds the configurable daily quota.
	MaxDailyQuota = 300
)

// UpstreamSettings configures the browser-driven upstream assistant.
type UpstreamSettings struct {
	Credentials Credentials
	BaseURL     string
	Headless    bool

	// Selectors locate the page elements used to drive the conversation.
	PromptSelector   string
	SubmitSelector   string
	ResponseSelector string
	LoginEmailSel    string
	LoginPasswordSel string
	LoginSubmitSel   string
}

// TelegramSettings configures the Telegram bot sender.
type TelegramSettings struct {
	Token  string
	APIURL string

	// RatePerSecond limits sends per channel. Zero disables limiting.
	RatePerSecond float64
}

// Settings is the full runtime configuration of the pipeline.
type Settings struct {
	DailyQuota              int
	PublishFloor            int
	HighImportanceThreshold int

	QueryTimeout  time.Duration
	QueryPacing   time.Duration
	SendPacing    time.Duration
	CheckInterval time.Duration
	CatchUpWindow time.Duration

	// CandidateMultiplier sizes candidate selection as target*multiplier.
	CandidateMultiplier int

	// FallbackPoolSize caps the merged pool used for unknown sessions.
	FallbackPoolSize int

	// UnknownQueryBudget and UnknownTargetItems apply to ad-hoc session names.
	UnknownQueryBudget int
	UnknownTargetItems int

	Sessions []SessionBudget

	// Channels maps logical channel keys to external channel identifiers.
	Channels       map[string]string
	DefaultChannel string

	Upstream UpstreamSettings
	Telegram TelegramSettings

	DataDir       string
	QueryPoolPath string
	LogLevel      string
}

// DefaultSessions returns the four standard daily sessions.
func DefaultSessions() []SessionBudget {
	return []SessionBudget{
		{Name: "morning", ScheduledTime: "09:00", TargetItemCount: 3, QueryBudget: 8, Enabled: true},
		{Name: "afternoon", ScheduledTime: "13:00", TargetItemCount: 4, QueryBudget: 10, Enabled: true},
		{Name: "evening", ScheduledTime: "18:00", TargetItemCount: 5, QueryBudget: 12, Enabled: true},
		{Name: "night", ScheduledTime: "22:00", TargetItemCount: 3, QueryBudget: 8, Enabled: true},
	}
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		DailyQuota:              DefaultDailyQuota,
		PublishFloor:            DefaultPublishFloor,
		HighImportanceThreshold: DefaultHighImportanceThreshold,
		QueryTimeout:            DefaultQueryTimeout,
		QueryPacing:             DefaultQueryPacing,
		SendPacing:              DefaultSendPacing,
		CheckInterval:           DefaultCheckInterval,
		CatchUpWindow:           DefaultCatchUpWindow,
		CandidateMultiplier:     DefaultCandidateMultiplier,
		FallbackPoolSize:        DefaultFallbackPoolSize,
		UnknownQueryBudget:      DefaultUnknownQueryBudget,
		UnknownTargetItems:      DefaultUnknownTargetItems,
		Sessions:                DefaultSessions(),
		Channels:                map[string]string{},
		DefaultChannel:          DefaultChannelKey,
		Upstream: UpstreamSettings{
			BaseURL:          "https://www.perplexity.ai",
			Headless:         true,
			PromptSelector:   "textarea",
			SubmitSelector:   "button[aria-label='Submit']",
			ResponseSelector: ".prose",
			LoginEmailSel:    "input[type='email']",
			LoginPasswordSel: "input[type='password']",
			LoginSubmitSel:   "button[type='submit']",
		},
		Telegram: TelegramSettings{
			APIURL:        "https://api.telegram.org",
			RatePerSecond: 1,
		},
		LogLevel: "info",
	}
}

// Session returns the budget for the named session.
func (s Settings) Session(name string) (SessionBudget, bool) {
	for _, b := range s.Sessions {
		if b.Name == name {
			return b, true
		}
	}
	return SessionBudget{}, false
}

// ChannelKeys returns the configured logical channel keys in sorted order.
func (s Settings) ChannelKeys() []string {
	keys := make([]string, 0, len(s.Channels))
	for k := range s.Channels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the settings and reports every problem found.
func (s Settings) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...)))
	}

	if s.DailyQuota < 1 || s.DailyQuota > MaxDailyQuota {
		invalid("daily quota must be between 1 and %d, got %d", MaxDailyQuota, s.DailyQuota)
	}
	if s.PublishFloor < MinImportance || s.PublishFloor > MaxImportance {
		invalid("publish floor must be between %d and %d, got %d", MinImportance, MaxImportance, s.PublishFloor)
	}
	if s.HighImportanceThreshold < MinImportance || s.HighImportanceThreshold > MaxImportance {
		invalid("high importance threshold must be between %d and %d, got %d",
			MinImportance, MaxImportance, s.HighImportanceThreshold)
	}
	if s.QueryTimeout <= 0 {
		invalid("query timeout must be positive")
	}
	if s.QueryPacing < 0 || s.SendPacing < 0 {
		invalid("pacing must not be negative")
	}
	if s.CandidateMultiplier < 1 {
		invalid("candidate multiplier must be at least 1")
	}

	seen := make(map[string]struct{}, len(s.Sessions))
	for _, b := range s.Sessions {
		if b.Name == "" {
			invalid("session name must not be empty")
			continue
		}
		if _, dup := seen[b.Name]; dup {
			invalid("duplicate session %q", b.Name)
		}
		seen[b.Name] = struct{}{}
		if _, _, err := b.Clock(); err != nil {
			errs = append(errs, err)
		}
		if b.TargetItemCount < 1 || b.QueryBudget < 1 {
			invalid("session %s: target and query budget must be positive", b.Name)
		}
	}

	for _, key := range s.ChannelKeys() {
		id := s.Channels[key]
		if !strings.HasPrefix(id, "@") && !strings.HasPrefix(id, "-") {
			invalid("channel %s: id %q must start with @ or -", key, id)
		}
	}

	return errors.Join(errs...)
}
