// Package settings keeps the Setting sheet of a dashboard consistent with the
// header layout of its data sheets.
package settings

import (
	"context"
	"fmt"
	"strings"

	"sheet_display/internal/document"
	"sheet_display/internal/schema"

	"github.com/rs/zerolog/log"
)

// TableRange is the area of the Setting sheet read and rewritten on each pass.
var TableRange = document.Range(document.SettingSheet, "A1:Z1000")

// Merge builds the new Setting table body from the rows currently on the sheet
// (header included) and the live schema. Operator fields of known sheets are
// kept, ExistingColumns is refreshed, unknown sheets get a default row and
// rows for sheets that no longer exist are dropped. Merge is idempotent.
func Merge(existing [][]interface{}, s schema.SheetSchema) []Row {
	index := make(map[string]Row)
	if len(existing) > 1 {
		for _, values := range existing[1:] {
			if len(values) < 3 {
				continue
			}
			row := RowFromValues(values)
			if _, seen := index[row.SheetName]; seen {
				continue
			}
			index[row.SheetName] = row
		}
	}

	rows := make([]Row, 0, len(s))
	for _, sheet := range s {
		cols := strings.Join(sheet.Columns, ",")
		if row, ok := index[sheet.Name]; ok {
			row.ExistingColumns = cols
			rows = append(rows, row)
			continue
		}
		rows = append(rows, NewRow(sheet.Name, cols))
	}
	return rows
}

// Change describes one rewrite of a Setting sheet.
type Change struct {
	Written bool
	Rows    int
	Added   []string
	Dropped []string
}

// Reconcile rewrites the Setting sheet of one spreadsheet from its schema. It
// returns false without error when the spreadsheet has no Setting sheet, and
// true once the write was issued.
func Reconcile(ctx context.Context, api document.API, spreadsheetID string, s schema.SheetSchema) (bool, error) {
	change, err := Apply(ctx, api, spreadsheetID, s)
	return change.Written, err
}

// Apply is Reconcile reporting which sheets gained or lost a Setting row.
func Apply(ctx context.Context, api document.API, spreadsheetID string, s schema.SheetSchema) (Change, error) {
	sheets, err := api.ListSheets(ctx, spreadsheetID)
	if err != nil {
		return Change{}, fmt.Errorf("failed to list sheets: %w", err)
	}
	if !document.HasSheet(sheets, document.SettingSheet) {
		log.Warn().Str("spreadsheet_id", spreadsheetID).Msg("Setting sheet not found, skipping")
		return Change{}, nil
	}

	existing, err := api.ReadRange(ctx, spreadsheetID, TableRange)
	if err != nil {
		return Change{}, fmt.Errorf("failed to read settings: %w", err)
	}

	rows := Merge(existing, s)
	if err := api.UpdateRange(ctx, spreadsheetID, TableRange, Table(rows, existing)); err != nil {
		return Change{}, fmt.Errorf("failed to write settings: %w", err)
	}

	change := Change{Written: true, Rows: len(rows)}
	change.Added, change.Dropped = diff(existing, rows)

	log.Info().
		Str("spreadsheet_id", spreadsheetID).
		Int("rows", len(rows)).
		Int("added", len(change.Added)).
		Int("dropped", len(change.Dropped)).
		Msg("Updated settings")
	return change, nil
}

func diff(existing [][]interface{}, rows []Row) (added, dropped []string) {
	before := make(map[string]bool)
	if len(existing) > 1 {
		for _, values := range existing[1:] {
			if len(values) >= 3 {
				before[document.CellString(values, 0)] = true
			}
		}
	}
	after := make(map[string]bool, len(rows))
	for _, row := range rows {
		after[row.SheetName] = true
		if !before[row.SheetName] {
			added = append(added, row.SheetName)
		}
	}
	if len(existing) > 1 {
		for _, values := range existing[1:] {
			name := document.CellString(values, 0)
			if len(values) >= 3 && !after[name] {
				dropped = append(dropped, name)
				after[name] = true
			}
		}
	}
	return added, dropped
}

// Table renders the header and rows. Every row is padded with blank cells to
// the width of the row it replaces, and blank rows are appended until the
// table covers every row of previous, so that cells of dropped rows are
// cleared by the same write.
func Table(rows []Row, previous [][]interface{}) [][]interface{} {
	values := make([][]interface{}, 0, max(len(rows)+1, len(previous)))
	values = append(values, Header)
	for _, row := range rows {
		values = append(values, row.Values())
	}
	for i := len(values); i < len(previous); i++ {
		values = append(values, nil)
	}

	for i, row := range values {
		width := len(Header)
		if i < len(previous) {
			width = max(width, len(previous[i]))
		}
		values[i] = pad(row, width)
	}
	return values
}

func pad(row []interface{}, width int) []interface{} {
	if len(row) >= width {
		return row
	}
	out := make([]interface{}, width)
	copy(out, row)
	for j := len(row); j < width; j++ {
		out[j] = ""
	}
	return out
}
