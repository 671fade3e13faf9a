// Command newsdesk collects AI and technology news from a conversational
// search assistant and publishes it to Telegram channels.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/newsdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/newsdesk/internal/adapters/driven/executor/browser"
	"github.com/custodia-labs/newsdesk/internal/adapters/driven/sender"
	"github.com/custodia-labs/newsdesk/internal/adapters/driven/sender/console"
	"github.com/custodia-labs/newsdesk/internal/adapters/driven/sender/telegram"
	"github.com/custodia-labs/newsdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/newsdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/newsdesk/internal/classifier"
	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/services"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

func main() {
	if err := cli.Execute(build); err != nil {
		os.Exit(1)
	}
}

// build wires the adapters and services for one command invocation.
func build(opts cli.Options) (*cli.App, error) {
	settingsStore, err := openSettings(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", settingsStore.Path(), err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", settingsStore.Path(), err)
	}
	if !opts.Verbose {
		logger.SetLevel(logger.ParseLevel(settings.LogLevel))
	}

	poolStore := file.NewPoolStore(settings.QueryPoolPath)
	pool, err := poolStore.LoadPool()
	if err != nil {
		return nil, fmt.Errorf("loading query pool: %w", err)
	}

	a := &cli.App{Settings: settings}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.Closers = append(a.Closers, store)

	ctx := context.Background()
	for _, b := range settings.Sessions {
		if err := store.SessionStore().SaveBudget(ctx, &b); err != nil {
			return nil, fmt.Errorf("saving session %s: %w", b.Name, err)
		}
	}

	msgSender, err := newSender(settings, opts.DryRun)
	if err != nil {
		return nil, err
	}
	channels := settings.Channels
	if _, isConsole := msgSender.(*console.Sender); isConsole {
		channels = consoleChannels(settings)
	}

	executor := browser.New(browser.ConfigFromSettings(settings.Upstream))
	engine := services.NewSessionEngine(executor, store.Ledger(), services.SessionEngineConfig{
		Credentials:  settings.Upstream.Credentials,
		DailyQuota:   settings.DailyQuota,
		QueryTimeout: settings.QueryTimeout,
	})
	a.Closers = append(a.Closers, engine)

	cls := classifier.New(classifier.Config{
		AllChannels:             settings.ChannelKeys(),
		DefaultChannel:          settings.DefaultChannel,
		HighImportanceThreshold: settings.HighImportanceThreshold,
	})
	pipeline := services.NewPipeline(cls, store.ItemStore(), nil)

	publisher := services.NewPublisher(msgSender, store.ItemStore(), store.ReceiptStore(), services.PublisherConfig{
		Floor:      settings.PublishFloor,
		Channels:   channels,
		SendPacing: settings.SendPacing,
	})

	scheduler := services.NewScheduler(engine, pipeline, publisher, store.SessionStore(), store.StatsStore(),
		services.SchedulerConfig{
			Sessions:            settings.Sessions,
			Pool:                pool,
			PublishFloor:        settings.PublishFloor,
			QueryPacing:         settings.QueryPacing,
			CandidateMultiplier: settings.CandidateMultiplier,
			FallbackPoolSize:    settings.FallbackPoolSize,
			UnknownQueryBudget:  settings.UnknownQueryBudget,
			UnknownTargetItems:  settings.UnknownTargetItems,
			CheckInterval:       settings.CheckInterval,
			CatchUpWindow:       settings.CatchUpWindow,
		})

	checkers := []driven.HealthChecker{store, executor}
	if hc, isChecker := msgSender.(driven.HealthChecker); isChecker {
		checkers = append(checkers, hc)
	}
	status := services.NewStatusService(engine, store.Ledger(), store.ItemStore(), store.StatsStore(),
		store.SessionStore(), settings.DailyQuota, nil, checkers...)

	a.Scheduler = scheduler
	a.Publisher = publisher
	a.Status = status
	a.WatchPaths = []string{settingsStore.Path(), poolStore.Path()}
	a.Reload = func() ([]domain.SessionBudget, domain.QueryPool, error) {
		s, err := settingsStore.Load()
		if err != nil {
			return nil, domain.QueryPool{}, err
		}
		if err := s.Validate(); err != nil {
			return nil, domain.QueryPool{}, err
		}
		p, err := file.NewPoolStore(s.QueryPoolPath).LoadPool()
		if err != nil {
			return nil, domain.QueryPool{}, err
		}
		return s.Sessions, p, nil
	}

	ok = true
	return a, nil
}

func openSettings(path string) (*file.SettingsStore, error) {
	if path != "" {
		return file.NewSettingsStoreAt(path), nil
	}
	return file.NewSettingsStore("")
}

// newSender selects Telegram, or the console when running dry or without a token.
func newSender(settings domain.Settings, dryRun bool) (driven.Sender, error) {
	if dryRun || settings.Telegram.Token == "" {
		if !dryRun {
			logger.Warn("telegram token not configured; printing messages instead of sending")
		}
		return console.NewSender(nil), nil
	}

	tg, err := telegram.NewSender(telegram.Config{
		Token:  settings.Telegram.Token,
		APIURL: settings.Telegram.APIURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram sender: %w", err)
	}
	return sender.NewRateLimited(tg, sender.RateLimitConfig{
		RequestsPerSecond: settings.Telegram.RatePerSecond,
	}), nil
}

// consoleChannels gives every known channel key a printable id so dry runs
// show each message.
func consoleChannels(settings domain.Settings) map[string]string {
	out := make(map[string]string, len(settings.Channels)+len(classifier.DefaultAllChannels)+1)
	for _, k := range append([]string{settings.DefaultChannel}, classifier.DefaultAllChannels...) {
		out[k] = "@" + k
	}
	for k, v := range settings.Channels {
		out[k] = v
	}
	return out
}
