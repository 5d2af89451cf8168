package cmd

import (
	"context"
	"fmt"

	"sheet_display/internal/provision"

	"github.com/spf13/cobra"
)

var (
	provisionName  string
	provisionEmail string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a dashboard spreadsheet for an organization",
	Long: `Copy the template spreadsheet, share the copy with the given email as a
writer and append it to the spreadsheet directory.

Examples:
  sheet_display provision --name North --email north@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		checker, cleanup := initChecker(ctx)
		defer cleanup()

		entry, err := checker.Provisioner.Provision(ctx, provision.Request{Name: provisionName, Email: provisionEmail})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Name, entry.SpreadsheetID)
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionName, "name", "", "organization name")
	provisionCmd.Flags().StringVar(&provisionEmail, "email", "", "email of the operator to share the spreadsheet with")
	_ = provisionCmd.MarkFlagRequired("name")
	_ = provisionCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(provisionCmd)
}
