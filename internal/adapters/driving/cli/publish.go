package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish items left ready",
	Long: `Publishes stored items that are still ready, oldest first, for example after a
shutdown interrupted a session. Items below the publish floor are skipped.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().IntP("limit", "n", 0, "maximum number of items (0 = all)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}

	a, err := requireApp()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	n, err := a.Publisher.PublishPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("publish failed after %d items: %w", n, err)
	}

	cmd.Printf("Published %d items.\n", n)
	return nil
}
