// Package directory reads and appends the registry document listing every
// provisioned dashboard spreadsheet.
package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sheet_display/internal/document"

	"github.com/rs/zerolog/log"
)

const (
	// ReadRange covers name, contact, created and spreadsheet id on the first sheet.
	ReadRange = "A:D"

	CreatedLayout = "2006-01-02 15:04:05"
)

// Header is the first row of the directory document.
var Header = []interface{}{"Thana Name", "Email", "Created Time", "Spreadsheet ID"}

// Entry is one provisioned dashboard.
type Entry struct {
	Name          string
	Contact       string
	Created       time.Time
	SpreadsheetID string
}

func (e Entry) values() []interface{} {
	return []interface{}{e.Name, e.Contact, e.Created.Format(CreatedLayout), e.SpreadsheetID}
}

// ListSpreadsheetIDs returns column D of every directory row below the header
// that has at least four cells. IDs are trimmed and blank IDs are skipped.
func ListSpreadsheetIDs(ctx context.Context, api document.API, directoryID string) ([]string, error) {
	log.Debug().Str("directory_id", directoryID).Msg("Reading spreadsheet directory")
	values, err := api.ReadRange(ctx, directoryID, ReadRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", directoryID, err)
	}
	if len(values) == 0 {
		log.Error().Str("directory_id", directoryID).Msg("No data found in spreadsheet directory")
		return []string{}, nil
	}

	ids := make([]string, 0, len(values)-1)
	for i, row := range values[1:] {
		if len(row) < 4 {
			log.Debug().
				Int("row", i+2).
				Int("columns", len(row)).
				Msg("Skipping directory row with insufficient columns")
			continue
		}
		id := strings.TrimSpace(document.CellString(row, 3))
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}

	log.Debug().Int("spreadsheets", len(ids)).Msg("Retrieved spreadsheet directory")
	return ids, nil
}

// List parses every complete directory row into an Entry. Unparseable creation
// times are left zero.
func List(ctx context.Context, api document.API, directoryID string) ([]Entry, error) {
	values, err := api.ReadRange(ctx, directoryID, ReadRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", directoryID, err)
	}
	if len(values) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for _, row := range values[1:] {
		if len(row) < 4 {
			continue
		}
		created, _ := time.ParseInLocation(CreatedLayout, document.CellString(row, 2), time.Local)
		entries = append(entries, Entry{
			Name:          document.CellString(row, 0),
			Contact:       document.CellString(row, 1),
			Created:       created,
			SpreadsheetID: document.CellString(row, 3),
		})
	}
	return entries, nil
}

// Append records a newly provisioned dashboard.
func Append(ctx context.Context, api document.API, directoryID string, entry Entry) error {
	if entry.Created.IsZero() {
		entry.Created = time.Now()
	}
	if err := api.AppendRows(ctx, directoryID, ReadRange, [][]interface{}{entry.values()}); err != nil {
		return fmt.Errorf("failed to append directory entry for %s: %w", entry.Name, err)
	}
	log.Info().
		Str("name", entry.Name).
		Str("spreadsheet_id", entry.SpreadsheetID).
		Msg("Added directory entry")
	return nil
}

// EnsureHeader writes the header row when the directory is empty. It reports
// whether a header was written.
func EnsureHeader(ctx context.Context, api document.API, directoryID string) (bool, error) {
	values, err := api.ReadRange(ctx, directoryID, "A1:D1")
	if err != nil {
		return false, fmt.Errorf("failed to read directory header: %w", err)
	}
	if len(values) > 0 && len(values[0]) > 0 {
		return false, nil
	}
	if err := api.UpdateRange(ctx, directoryID, "A1:D1", [][]interface{}{Header}); err != nil {
		return false, fmt.Errorf("failed to write directory header: %w", err)
	}
	log.Info().Str("directory_id", directoryID).Msg("Wrote directory header")
	return true, nil
}
