package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the checker until interrupted",
	Long: `Run the reconciliation loop continuously. Each pass reads the spreadsheet
directory, refreshes the Setting sheet of every spreadsheet not checked within
the check interval and persists the checkpoints. The health and metrics server
runs alongside when enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		checker, cleanup := initChecker(ctx)
		defer cleanup()

		log.Info().Msg("Starting continuous monitoring of Google Sheets...")
		return checker.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
