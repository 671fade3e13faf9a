package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("one or more components are unhealthy")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database, upstream session and message sender",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	healthy := true
	for _, c := range a.Status.Health(cmd.Context()) {
		cmd.Printf("%s %-12s %s\n", healthMark(c.Healthy), c.Name, c.Message)
		if !c.Healthy {
			healthy = false
		}
	}

	if !healthy {
		return errUnhealthy
	}
	return nil
}
