package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"sheet_display/internal/checkpoint"
	"sheet_display/internal/directory"
	"sheet_display/internal/settings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statusSettingsID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when each spreadsheet was last reconciled",
	Long: `Print the checkpoint table joined with the spreadsheet directory. With
--settings, print the parsed display directives of one dashboard instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		checker, cleanup := initChecker(ctx)
		defer cleanup()

		if statusSettingsID != "" {
			displays, err := settings.Load(ctx, checker.Backend.API, statusSettingsID)
			if err != nil {
				return err
			}
			renderDisplays(cmd.OutOrStdout(), displays)
			return nil
		}

		saved, err := checker.Store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load checkpoints: %w", err)
		}
		entries, err := directory.List(ctx, checker.Backend.API, checker.Config.DirectoryID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read directory, showing checkpoints only")
		}
		renderCheckpoints(cmd.OutOrStdout(), entries, saved, checker.Config.CheckInterval, time.Now())
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusSettingsID, "settings", "", "spreadsheet ID whose Setting sheet to print")
	rootCmd.AddCommand(statusCmd)
}

func headerRow(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.FgHiCyan.Sprint(c)
	}
	return row
}

func renderCheckpoints(w io.Writer, entries []directory.Entry, saved checkpoint.Checkpoints, interval time.Duration, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(headerRow("NAME", "SPREADSHEET ID", "LAST RECONCILED", "AGE", "STATE"))

	listed := make(map[string]bool, len(entries))
	for _, e := range entries {
		listed[e.SpreadsheetID] = true
		t.AppendRow(checkpointRow(e.Name, e.SpreadsheetID, saved, interval, now))
	}

	// Checkpoints of spreadsheets no longer in the directory.
	var orphans []string
	for id := range saved {
		if !listed[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		t.AppendRow(checkpointRow(text.Faint.Sprint("(not listed)"), id, saved, interval, now))
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d listed", len(entries)), fmt.Sprintf("%d checkpoints", len(saved))})
	t.Render()
}

func checkpointRow(name, id string, saved checkpoint.Checkpoints, interval time.Duration, now time.Time) table.Row {
	last, ok := saved[id]
	if !ok {
		return table.Row{name, id, "never", "-", text.FgYellow.Sprint("due")}
	}
	at := time.Unix(last, 0)
	state := text.FgGreen.Sprint("fresh")
	if saved.Due(id, now, interval) {
		state = text.FgYellow.Sprint("due")
	}
	return table.Row{name, id, at.Format(directory.CreatedLayout), now.Sub(at).Truncate(time.Second).String(), state}
}

func renderDisplays(w io.Writer, displays []settings.Display) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(headerRow("SHEET", "SECONDS", "COLUMNS", "DISPLAY", "TITLE", "PHOTO"))
	for _, d := range displays {
		t.AppendRow(table.Row{
			d.SheetName,
			strconv.Itoa(d.TimeOfDisplay),
			strings.Join(d.Columns, ","),
			d.Mode,
			d.Title,
			d.PhotoColumn,
		})
	}
	t.Render()
}
