package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single reconciliation pass and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		checker, cleanup := initChecker(ctx)
		defer cleanup()

		if err := checker.Monitor.Load(ctx); err != nil {
			return err
		}
		result, err := checker.Monitor.RunPass(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"pass %s: %d spreadsheets, %d reconciled, %d skipped, %d missing Setting, %d failed, %d rate limited\n",
			result.ID, result.Total, result.Reconciled, result.Skipped, result.MissingSetting, result.Failed, result.RateLimited)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
