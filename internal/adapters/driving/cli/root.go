// Package cli provides the cobra command tree of newsdesk.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Global flags.
var (
	configPath string
	verbose    bool
	dryRun     bool
)

// Options carries the global flags to a Builder.
type Options struct {
	ConfigPath string
	DryRun     bool
	Verbose    bool
}

// App holds the services the commands operate on.
type App struct {
	Settings  domain.Settings
	Scheduler driving.Scheduler
	Publisher driving.Publisher
	Status    driving.StatusService

	// Reload re-reads the session budgets and the query pool.
	Reload func() ([]domain.SessionBudget, domain.QueryPool, error)

	// WatchPaths are the files serve watches for hot reload.
	WatchPaths []string

	// Closers are released in reverse order when the command ends.
	Closers []io.Closer
}

// Close releases every closer, last registered first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.Closers) - 1; i >= 0; i-- {
		if err := a.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.Closers = nil
	return errors.Join(errs...)
}

// Builder constructs the application from the global flags.
type Builder func(opts Options) (*App, error)

var (
	builder Builder
	app     *App
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Collect AI and technology news and publish it to Telegram",
	Long: `newsdesk queries a conversational search assistant on a daily schedule,
classifies the answers into news items and publishes the important ones to
Telegram channels.

Queries are cached and counted against a daily quota. Run "newsdesk serve"
to start the scheduler or use the other commands for one-off runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.newsdesk/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print messages instead of sending them")
}

// Execute runs the command tree. b builds the services on first use.
func Execute(b Builder) error {
	builder = b
	defer closeApp()

	err := rootCmd.Execute()
	if err != nil {
		logger.Debug("command failed: %v", err)
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), userMessage(err))
	}
	return err
}

// requireApp returns the application, building it on first call.
func requireApp() (*App, error) {
	if app != nil {
		return app, nil
	}
	if builder == nil {
		return nil, errors.New("application not configured")
	}
	a, err := builder(Options{ConfigPath: configPath, DryRun: dryRun, Verbose: verbose})
	if err != nil {
		return nil, err
	}
	app = a
	return app, nil
}

func closeApp() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		logger.Warn("cli: close: %v", err)
	}
	app = nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// expectedErrors are shown by their short description; anything else is
// shown verbatim.
var expectedErrors = []error{
	domain.ErrQuotaExceeded,
	domain.ErrUpstreamTimeout,
	domain.ErrSessionLost,
	domain.ErrAuthFailed,
	domain.ErrSessionClosed,
	domain.ErrSessionDisabled,
	domain.ErrNoDeliverableChannel,
	domain.ErrSendFailed,
	domain.ErrStorage,
}

func userMessage(err error) string {
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return domain.Describe(err)
		}
	}
	return err.Error()
}
