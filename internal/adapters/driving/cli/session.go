package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run and inspect news sessions",
	Long: `A session selects queries from its pool, runs them until its target item
count or query budget is reached, and publishes the items that clear the floor.`,
}

var sessionRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a session now",
	Long: `Runs the named session immediately, regardless of its schedule.
Names without a configured budget use the merged category pool.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionRun,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sessions",
	RunE:  runSessionList,
}

func init() {
	sessionCmd.AddCommand(sessionRunCmd)
	sessionCmd.AddCommand(sessionListCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionRun(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	name := args[0]
	cmd.Printf("Running session: %s...\n", name)

	run, err := a.Scheduler.RunSession(ctx, name)
	if err != nil {
		return fmt.Errorf("session %s failed: %w", name, err)
	}

	printRun(cmd, run)
	return nil
}

func printRun(cmd *cobra.Command, run *domain.SessionRun) {
	cmd.Printf("Session %s finished: %s\n", run.SessionName, run.StopReason)
	cmd.Printf("  Queries:   %d\n", run.QueriesAttempted)
	cmd.Printf("  Created:   %d\n", run.ItemsCreated)
	cmd.Printf("  Published: %d\n", run.ItemsPublished)
	if run.Errors > 0 {
		cmd.Printf("  Errors:    %s\n", warnStyle.Render(fmt.Sprint(run.Errors)))
	}
	if !run.EndedAt.IsZero() && !run.StartedAt.IsZero() {
		cmd.Printf("  Duration:  %s\n", run.EndedAt.Sub(run.StartedAt).Round(time.Second))
	}
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	report, err := a.Status.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading sessions: %w", err)
	}

	if len(report.Sessions) == 0 {
		cmd.Println("No sessions configured.")
		return nil
	}

	now := time.Now()
	cmd.Println(titleStyle.Render("Sessions"))
	for _, b := range report.Sessions {
		printSession(cmd, b, report.LastRuns[b.Name], now)
	}
	return nil
}

func printSession(cmd *cobra.Command, b domain.SessionBudget, last *domain.SessionRun, now time.Time) {
	state := okStyle.Render("enabled")
	if !b.Enabled {
		state = labelStyle.Render("disabled")
	}

	next := "-"
	if b.Enabled {
		if t, err := nextTrigger(b, now); err == nil {
			next = t.Format("Mon 15:04")
		}
	}

	lastRun := "never"
	if last != nil {
		lastRun = fmt.Sprintf("%s (%s, %d published)",
			last.StartedAt.Local().Format("2006-01-02 15:04"), last.StopReason, last.ItemsPublished)
	}

	cmd.Printf("  %-10s %s  %d items / %d queries  %s  next: %s  last: %s\n",
		b.Name, b.ScheduledTime, b.TargetItemCount, b.QueryBudget, state, next, lastRun)
}

// nextTrigger returns the next scheduled start at or after now.
func nextTrigger(b domain.SessionBudget, now time.Time) (time.Time, error) {
	t, err := b.TriggerOn(now)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
