package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run one news query",
	Long: `Sends a single query upstream, classifies the answer and stores the item.
A repeated query is answered from the cache without using quota.

With --publish the item is delivered when its importance clears the floor.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Bool("publish", false, "publish the item when it clears the floor")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	publish, err := cmd.Flags().GetBool("publish")
	if err != nil {
		return fmt.Errorf("getting publish flag: %w", err)
	}

	a, err := requireApp()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	text := strings.Join(args, " ")
	cmd.Printf("Querying: %s\n", text)

	item, err := a.Scheduler.RunQuery(ctx, text, publish)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printItem(cmd, item)
	return nil
}

func printItem(cmd *cobra.Command, item *domain.ContentItem) {
	cmd.Println()
	cmd.Println(titleStyle.Render(item.Title))
	cmd.Printf("%s %s\n", labelStyle.Render("ID:        "), item.ID)
	cmd.Printf("%s %s\n", labelStyle.Render("Category:  "), item.Category)
	cmd.Printf("%s %d/10\n", labelStyle.Render("Importance:"), item.ImportanceScore)
	if len(item.Keywords) > 0 {
		cmd.Printf("%s %s\n", labelStyle.Render("Keywords:  "), strings.Join(item.Keywords, ", "))
	}
	cmd.Printf("%s %s\n", labelStyle.Render("Channels:  "), strings.Join(item.TargetChannels, ", "))
	cmd.Printf("%s %s\n", labelStyle.Render("Status:    "), item.Status)
	if item.Summary != "" {
		cmd.Println()
		cmd.Println(item.Summary)
	}
}
