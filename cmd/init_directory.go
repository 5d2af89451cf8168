package cmd

import (
	"context"
	"fmt"

	"sheet_display/internal/directory"

	"github.com/spf13/cobra"
)

var initDirectoryCmd = &cobra.Command{
	Use:   "init-directory",
	Short: "Write the header row of the spreadsheet directory if it is empty",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		checker, cleanup := initChecker(ctx)
		defer cleanup()

		wrote, err := directory.EnsureHeader(ctx, checker.Backend.API, checker.Config.DirectoryID)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintln(cmd.OutOrStdout(), "directory header written")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "directory header already present")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDirectoryCmd)
}
