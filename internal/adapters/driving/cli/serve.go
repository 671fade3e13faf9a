package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session scheduler",
	Long: `Starts the scheduler. Every enabled session runs once a day, within its
catch-up window after the scheduled time. Sessions never overlap.

The config file and the query pool are watched; edits to sessions and
queries apply without a restart. Stop with Ctrl+C; a query in flight is
allowed to finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	var wg sync.WaitGroup
	if a.Reload != nil && len(a.WatchPaths) > 0 {
		w := file.NewWatcher(file.DefaultDebounce, a.WatchPaths...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx, func(path string) { reload(a, path) }); err != nil {
				logger.Warn("serve: config watcher: %v", err)
			}
		}()
	}

	enabled := 0
	for _, b := range a.Settings.Sessions {
		if b.Enabled {
			enabled++
		}
	}
	cmd.Printf("Scheduler running with %d sessions. Press Ctrl+C to stop.\n", enabled)

	err = a.Scheduler.Start(ctx)
	stop()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	cmd.Println("Scheduler stopped.")
	return nil
}

// reload applies changed sessions and pools. A broken file keeps the
// previous configuration.
func reload(a *App, path string) {
	budgets, pool, err := a.Reload()
	if err != nil {
		logger.Warn("serve: reload %s: %v", path, err)
		return
	}
	a.Scheduler.UpdateSessions(budgets, pool)
	logger.Info("serve: reloaded %s (%d sessions, %d queries)", path, len(budgets), pool.Size())
}
