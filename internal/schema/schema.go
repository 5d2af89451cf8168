// Package schema extracts the header column layout of every data sheet in a
// dashboard spreadsheet.
package schema

import (
	"context"
	"fmt"

	"sheet_display/internal/document"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Sheet is the header layout of one data sheet.
type Sheet struct {
	Name    string
	Columns []string
}

// SheetSchema lists the data sheets of a spreadsheet in document order.
type SheetSchema []Sheet

// Names returns the sheet names in order.
func (s SheetSchema) Names() []string {
	names := make([]string, len(s))
	for i, sheet := range s {
		names[i] = sheet.Name
	}
	return names
}

// Columns returns the columns of the named sheet.
func (s SheetSchema) Columns(name string) ([]string, bool) {
	for _, sheet := range s {
		if sheet.Name == name {
			return sheet.Columns, true
		}
	}
	return nil, false
}

// ColumnLetters returns the first n column letters: A, B, ..., Z, AA, AB, ...
func ColumnLetters(n int) []string {
	letters := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		name, err := excelize.ColumnNumberToName(i)
		if err != nil {
			// beyond the last spreadsheet column
			break
		}
		letters = append(letters, name)
	}
	return letters
}

// Extract reads the first row of every sheet except the Setting sheet. Any
// remote failure fails the whole document.
func Extract(ctx context.Context, api document.API, spreadsheetID string) (SheetSchema, error) {
	sheets, err := api.ListSheets(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	result := make(SheetSchema, 0, len(sheets))
	for _, name := range sheets {
		if name == document.SettingSheet {
			continue
		}
		header, err := api.ReadRange(ctx, spreadsheetID, document.Range(name, "1:1"))
		if err != nil {
			return nil, fmt.Errorf("failed to read header of sheet %s: %w", name, err)
		}

		var cells int
		if len(header) > 0 {
			cells = len(header[0])
		}
		result = append(result, Sheet{Name: name, Columns: ColumnLetters(cells)})

		log.Debug().
			Str("spreadsheet_id", spreadsheetID).
			Str("sheet", name).
			Int("columns", cells).
			Msg("Extracted sheet header")
	}

	return result, nil
}
