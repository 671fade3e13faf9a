package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show quota, today's counters and sessions",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	report, err := a.Status.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	quota := fmt.Sprintf("%d / %d used", report.Today.QueriesUsed, report.DailyQuota)
	if report.QuotaRemaining == 0 {
		quota = warnStyle.Render(quota + " (exhausted)")
	}

	cmd.Println(titleStyle.Render("newsdesk status"))
	cmd.Printf("%s %s\n", labelStyle.Render("Date:     "), report.Today.Date)
	cmd.Printf("%s %s\n", labelStyle.Render("Quota:    "), quota)
	cmd.Printf("%s %s\n", labelStyle.Render("Upstream: "), report.SessionState)
	cmd.Printf("%s %d created, %d published, %d errors\n", labelStyle.Render("Today:    "),
		report.Today.ItemsCreated, report.Today.ItemsPublished, report.Today.Errors)
	cmd.Printf("%s %d ready, %d published, %d skipped\n", labelStyle.Render("Items:    "),
		report.ItemsByStatus[domain.ItemReady],
		report.ItemsByStatus[domain.ItemPublished],
		report.ItemsByStatus[domain.ItemSkipped])

	if len(report.Sessions) > 0 {
		cmd.Println()
		cmd.Println(titleStyle.Render("Sessions"))
		now := time.Now()
		for _, b := range report.Sessions {
			printSession(cmd, b, report.LastRuns[b.Name], now)
		}
	}
	return nil
}
