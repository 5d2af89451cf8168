package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sheet_display/internal/document"

	"github.com/rs/zerolog/log"
)

// Display is the parsed directive telling the dashboard how to show a sheet.
type Display struct {
	SheetName     string
	TimeOfDisplay int
	Columns       []string
	Mode          string
	Title         string
	PhotoColumn   string
}

// Load reads the Setting sheet and returns the directives of every sheet that
// is shown. Rows with time_of_display "0" are hidden. Rows with a
// non-numeric time are logged and skipped.
func Load(ctx context.Context, api document.API, spreadsheetID string) ([]Display, error) {
	values, err := api.ReadRange(ctx, spreadsheetID, TableRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(values) <= 1 {
		return nil, nil
	}

	var displays []Display
	for i, raw := range values[1:] {
		row := RowFromValues(raw)
		if row.SheetName == "" {
			continue
		}
		timeOfDisplay := strings.TrimSpace(row.TimeOfDisplay)
		if timeOfDisplay == "0" {
			continue
		}
		seconds, err := strconv.Atoi(timeOfDisplay)
		if err != nil {
			log.Warn().
				Str("spreadsheet_id", spreadsheetID).
				Str("sheet", row.SheetName).
				Int("row", i+2).
				Str("time_of_display", row.TimeOfDisplay).
				Msg("Invalid time_of_display, skipping row")
			continue
		}

		displays = append(displays, Display{
			SheetName:     row.SheetName,
			TimeOfDisplay: seconds,
			Columns:       splitColumns(row.ColumnsToDisplay),
			Mode:          row.Display,
			Title:         row.Title,
			PhotoColumn:   strings.TrimSpace(row.PhotoColumn),
		})
	}
	return displays, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, col := range strings.Split(s, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
