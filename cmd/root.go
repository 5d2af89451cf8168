package cmd

import (
	"context"
	"os"

	"sheet_display/internal/app"
	"sheet_display/internal/di"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	backendKind string
	workbookDir string
)

// rootCmd is the entry point when the binary is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sheet_display",
	Short: "Keep dashboard Setting sheets in line with their data sheets",
	Long: `sheet_display provisions per-organization dashboard spreadsheets and runs the
checker that keeps the "existing column" field of every Setting sheet consistent
with the header rows of the data sheets.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		app.SetupEnvironment()
		applyFlagOverrides(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&backendKind, "backend", "", "document backend: google or workbook (env BACKEND)")
	rootCmd.PersistentFlags().StringVar(&workbookDir, "workbook-dir", "", "directory of .xlsx files for the workbook backend (env WORKBOOK_DIR)")
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlagOverrides exports explicitly set flags to the environment variables
// the configuration is bound to.
func applyFlagOverrides(cmd *cobra.Command) {
	overrides := map[string]struct {
		env   string
		value string
	}{
		"backend":      {"BACKEND", backendKind},
		"workbook-dir": {"WORKBOOK_DIR", workbookDir},
	}
	for flag, o := range overrides {
		if cmd.Flags().Changed(flag) {
			if err := os.Setenv(o.env, o.value); err != nil {
				log.Warn().Err(err).Str("flag", flag).Msg("Failed to apply flag override")
			}
		}
	}
}

func initChecker(ctx context.Context) (*app.Checker, func()) {
	checker, cleanup, err := di.InitChecker(ctx, configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	return checker, cleanup
}
