// Package document describes the remote spreadsheet API consumed by the checker
// and the provisioner, independent of the backend serving it.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SettingSheet is the reserved configuration sheet present in every dashboard.
const SettingSheet = "Setting"

var ErrSheetNotFound = errors.New("sheet not found")

// API is the subset of spreadsheet operations the application needs.
// ReadRange returns zero rows (not an error) for an empty range.
type API interface {
	ListSheets(ctx context.Context, spreadsheetID string) ([]string, error)
	ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error)
	UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}) error
	AppendRows(ctx context.Context, spreadsheetID, a1Range string, rows [][]interface{}) error
}

// Range builds an A1 range for a sheet, quoting the sheet name.
func Range(sheet, cells string) string {
	if sheet == "" {
		return cells
	}
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

// SplitRange splits an A1 range into its sheet name and cell part.
// A range without "!" is treated as a cell reference on the first sheet.
func SplitRange(a1Range string) (sheet, cells string) {
	idx := strings.LastIndex(a1Range, "!")
	if idx < 0 {
		if strings.HasPrefix(a1Range, "'") {
			return unquote(a1Range), ""
		}
		return "", a1Range
	}
	return unquote(a1Range[:idx]), a1Range[idx+1:]
}

func unquote(sheet string) string {
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		return strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet
}

// CellString renders a cell value the way it would be displayed.
func CellString(row []interface{}, index int) string {
	if index < 0 || index >= len(row) || row[index] == nil {
		return ""
	}
	if s, ok := row[index].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[index])
}

// HasSheet reports whether name is one of sheets.
func HasSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}
