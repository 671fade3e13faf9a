package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily counters",
	Long:  `Shows queries used, items created and published, and errors per day, newest first.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntP("days", "d", 7, "number of days to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	days, err := cmd.Flags().GetInt("days")
	if err != nil {
		return fmt.Errorf("getting days flag: %w", err)
	}
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	a, err := requireApp()
	if err != nil {
		return err
	}

	stats, err := a.Status.DailyStats(cmd.Context(), days)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if len(stats) == 0 {
		cmd.Println("No activity recorded yet.")
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%-10s  %7s  %7s  %9s  %6s", "Date", "Queries", "Created", "Published", "Errors")))
	for _, d := range stats {
		cmd.Printf("%-10s  %7d  %7d  %9d  %6d\n", d.Date, d.QueriesUsed, d.ItemsCreated, d.ItemsPublished, d.Errors)
	}
	return nil
}
