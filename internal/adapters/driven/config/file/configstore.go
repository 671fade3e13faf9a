package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// Environment variables that override the file.
const (
	EnvUpstreamEmail    = "NEWSDESK_UPSTREAM_EMAIL"
	EnvUpstreamPassword = "NEWSDESK_UPSTREAM_PASSWORD"
	EnvTelegramToken    = "NEWSDESK_TELEGRAM_TOKEN"
	EnvDailyQuota       = "NEWSDESK_DAILY_QUOTA"
	EnvPublishFloor     = "NEWSDESK_PUBLISH_FLOOR"
)

// SettingsStore is a file-based implementation of driven.SettingsStore using TOML.
// Configuration is stored in config.toml within the newsdesk config directory.
type SettingsStore struct {
	filePath string
	getenv   func(string) string
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.newsdesk/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".newsdesk")
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
		getenv:   os.Getenv,
	}, nil
}

// NewSettingsStoreAt creates a settings store reading an explicit file.
func NewSettingsStoreAt(path string) *SettingsStore {
	return &SettingsStore{filePath: path, getenv: os.Getenv}
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load reads settings from the TOML file and applies environment overrides.
// Keys absent from the file keep their defaults.
func (s *SettingsStore) Load() (domain.Settings, error) {
	fs := toFile(domain.DefaultSettings())
	fs.Sessions = nil
	fs.Channels = nil

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	case os.IsNotExist(err):
		// No config file yet - run on defaults
	default:
		return domain.Settings{}, fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	settings, err := fromFile(fs)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	if err := s.applyEnv(&settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save writes settings to the TOML file with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	data, err := toml.Marshal(toFile(settings))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func (s *SettingsStore) applyEnv(settings *domain.Settings) error {
	if v := s.getenv(EnvUpstreamEmail); v != "" {
		settings.Upstream.Credentials.Email = v
	}
	if v := s.getenv(EnvUpstreamPassword); v != "" {
		settings.Upstream.Credentials.Password = v
	}
	if v := s.getenv(EnvTelegramToken); v != "" {
		settings.Telegram.Token = v
	}

	var errs []error
	intEnv := func(key string, dst *int) {
		v := s.getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, key, v))
			return
		}
		*dst = n
	}
	intEnv(EnvDailyQuota, &settings.DailyQuota)
	intEnv(EnvPublishFloor, &settings.PublishFloor)
	return errors.Join(errs...)
}

// fileSettings is the on-disk TOML layout.
type fileSettings struct {
	DailyQuota              int    `toml:"daily_quota"`
	PublishFloor            int    `toml:"publish_floor"`
	HighImportanceThreshold int    `toml:"high_importance_threshold"`
	QueryTimeout            string `toml:"query_timeout"`
	QueryPacing             string `toml:"query_pacing"`
	SendPacing              string `toml:"send_pacing"`
	CheckInterval           string `toml:"check_interval"`
	CatchUpWindow           string `toml:"catch_up_window"`
	CandidateMultiplier     int    `toml:"candidate_multiplier"`
	FallbackPoolSize        int    `toml:"fallback_pool_size"`
	UnknownQueryBudget      int    `toml:"unknown_query_budget"`
	UnknownTargetItems      int    `toml:"unknown_target_items"`
	DefaultChannel          string `toml:"default_channel"`
	DataDir                 string `toml:"data_dir,omitempty"`
	QueryPoolPath           string `toml:"query_pool_path,omitempty"`
	LogLevel                string `toml:"log_level"`

	Channels map[string]string `toml:"channels"`
	Sessions []fileSession     `toml:"sessions"`
	Upstream fileUpstream      `toml:"upstream"`
	Telegram fileTelegram      `toml:"telegram"`
}

type fileSession struct {
	Name        string `toml:"name"`
	Time        string `toml:"time"`
	TargetItems int    `toml:"target_items"`
	QueryBudget int    `toml:"query_budget"`
	Enabled     *bool  `toml:"enabled,omitempty"`
}

type fileUpstream struct {
	Email            string `toml:"email,omitempty"`
	Password         string `toml:"password,omitempty"`
	BaseURL          string `toml:"base_url"`
	Headless         bool   `toml:"headless"`
	PromptSelector   string `toml:"prompt_selector"`
	SubmitSelector   string `toml:"submit_selector"`
	ResponseSelector string `toml:"response_selector"`
	LoginEmailSel    string `toml:"login_email_selector"`
	LoginPasswordSel string `toml:"login_password_selector"`
	LoginSubmitSel   string `toml:"login_submit_selector"`
}

type fileTelegram struct {
	Token         string  `toml:"token,omitempty"`
	APIURL        string  `toml:"api_url"`
	RatePerSecond float64 `toml:"rate_per_second"`
}

func toFile(s domain.Settings) fileSettings {
	fs := fileSettings{
		DailyQuota:              s.DailyQuota,
		PublishFloor:            s.PublishFloor,
		HighImportanceThreshold: s.HighImportanceThreshold,
		QueryTimeout:            s.QueryTimeout.String(),
		QueryPacing:             s.QueryPacing.String(),
		SendPacing:              s.SendPacing.String(),
		CheckInterval:           s.CheckInterval.String(),
		CatchUpWindow:           s.CatchUpWindow.String(),
		CandidateMultiplier:     s.CandidateMultiplier,
		FallbackPoolSize:        s.FallbackPoolSize,
		UnknownQueryBudget:      s.UnknownQueryBudget,
		UnknownTargetItems:      s.UnknownTargetItems,
		DefaultChannel:          s.DefaultChannel,
		DataDir:                 s.DataDir,
		QueryPoolPath:           s.QueryPoolPath,
		LogLevel:                s.LogLevel,
		Channels:                s.Channels,
		Upstream: fileUpstream{
			Email:            s.Upstream.Credentials.Email,
			Password:         s.Upstream.Credentials.Password,
			BaseURL:          s.Upstream.BaseURL,
			Headless:         s.Upstream.Headless,
			PromptSelector:   s.Upstream.PromptSelector,
			SubmitSelector:   s.Upstream.SubmitSelector,
			ResponseSelector: s.Upstream.ResponseSelector,
			LoginEmailSel:    s.Upstream.LoginEmailSel,
			LoginPasswordSel: s.Upstream.LoginPasswordSel,
			LoginSubmitSel:   s.Upstream.LoginSubmitSel,
		},
		Telegram: fileTelegram{
			Token:         s.Telegram.Token,
			APIURL:        s.Telegram.APIURL,
			RatePerSecond: s.Telegram.RatePerSecond,
		},
	}
	for _, b := range s.Sessions {
		enabled := b.Enabled
		fs.Sessions = append(fs.Sessions, fileSession{
			Name:        b.Name,
			Time:        b.ScheduledTime,
			TargetItems: b.TargetItemCount,
			QueryBudget: b.QueryBudget,
			Enabled:     &enabled,
		})
	}
	return fs
}

func fromFile(fs fileSettings) (domain.Settings, error) {
	s := domain.Settings{
		DailyQuota:              fs.DailyQuota,
		PublishFloor:            fs.PublishFloor,
		HighImportanceThreshold: fs.HighImportanceThreshold,
		CandidateMultiplier:     fs.CandidateMultiplier,
		FallbackPoolSize:        fs.FallbackPoolSize,
		UnknownQueryBudget:      fs.UnknownQueryBudget,
		UnknownTargetItems:      fs.UnknownTargetItems,
		DefaultChannel:          fs.DefaultChannel,
		DataDir:                 fs.DataDir,
		QueryPoolPath:           fs.QueryPoolPath,
		LogLevel:                fs.LogLevel,
		Channels:                fs.Channels,
		Upstream: domain.UpstreamSettings{
			Credentials: domain.Credentials{
				Email:    fs.Upstream.Email,
				Password: fs.Upstream.Password,
			},
			BaseURL:          fs.Upstream.BaseURL,
			Headless:         fs.Upstream.Headless,
			PromptSelector:   fs.Upstream.PromptSelector,
			SubmitSelector:   fs.Upstream.SubmitSelector,
			ResponseSelector: fs.Upstream.ResponseSelector,
			LoginEmailSel:    fs.Upstream.LoginEmailSel,
			LoginPasswordSel: fs.Upstream.LoginPasswordSel,
			LoginSubmitSel:   fs.Upstream.LoginSubmitSel,
		},
		Telegram: domain.TelegramSettings{
			Token:         fs.Telegram.Token,
			APIURL:        fs.Telegram.APIURL,
			RatePerSecond: fs.Telegram.RatePerSecond,
		},
	}
	if s.Channels == nil {
		s.Channels = map[string]string{}
	}

	var errs []error
	duration := func(name, v string, dst *time.Duration) {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s %q is not a duration", domain.ErrInvalidInput, name, v))
			return
		}
		*dst = d
	}
	duration("query_timeout", fs.QueryTimeout, &s.QueryTimeout)
	duration("query_pacing", fs.QueryPacing, &s.QueryPacing)
	duration("send_pacing", fs.SendPacing, &s.SendPacing)
	duration("check_interval", fs.CheckInterval, &s.CheckInterval)
	duration("catch_up_window", fs.CatchUpWindow, &s.CatchUpWindow)
	if err := errors.Join(errs...); err != nil {
		return domain.Settings{}, err
	}

	if len(fs.Sessions) == 0 {
		s.Sessions = domain.DefaultSessions()
		return s, nil
	}
	for _, fsess := range fs.Sessions {
		enabled := true
		if fsess.Enabled != nil {
			enabled = *fsess.Enabled
		}
		s.Sessions = append(s.Sessions, domain.SessionBudget{
			Name:            fsess.Name,
			ScheduledTime:   fsess.Time,
			TargetItemCount: fsess.TargetItems,
			QueryBudget:     fsess.QueryBudget,
			Enabled:         enabled,
		})
	}
	return s, nil
}
