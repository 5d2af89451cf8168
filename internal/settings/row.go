package settings

import (
	"sheet_display/internal/document"
)

// Defaults for a newly seen sheet.
const (
	DefaultTimeOfDisplay = "10"
	DefaultDisplay       = "last 5 row"
)

// Header is the fixed first row of the Setting sheet.
var Header = []interface{}{
	"sheet_name",
	"time_of_display (in sec)",
	"existing column",
	"columns in display",
	"display",
	"Title to display as",
	"photo column",
}

// Row is one line of the Setting sheet. ExistingColumns is owned by the
// checker; every other field belongs to the operator.
type Row struct {
	SheetName        string
	TimeOfDisplay    string
	ExistingColumns  string
	ColumnsToDisplay string
	Display          string
	Title            string
	PhotoColumn      string

	// Extra keeps cells right of the photo column untouched.
	Extra []string
}

// NewRow builds the default row for a sheet seen for the first time.
func NewRow(sheetName, existingColumns string) Row {
	return Row{
		SheetName:       sheetName,
		TimeOfDisplay:   DefaultTimeOfDisplay,
		ExistingColumns: existingColumns,
		Display:         DefaultDisplay,
	}
}

// RowFromValues maps a positional Setting row onto a Row.
func RowFromValues(values []interface{}) Row {
	row := Row{
		SheetName:        document.CellString(values, 0),
		TimeOfDisplay:    document.CellString(values, 1),
		ExistingColumns:  document.CellString(values, 2),
		ColumnsToDisplay: document.CellString(values, 3),
		Display:          document.CellString(values, 4),
		Title:            document.CellString(values, 5),
		PhotoColumn:      document.CellString(values, 6),
	}
	for i := len(Header); i < len(values); i++ {
		row.Extra = append(row.Extra, document.CellString(values, i))
	}
	return row
}

// Values renders the row positionally for the API.
func (r Row) Values() []interface{} {
	values := []interface{}{
		r.SheetName,
		r.TimeOfDisplay,
		r.ExistingColumns,
		r.ColumnsToDisplay,
		r.Display,
		r.Title,
		r.PhotoColumn,
	}
	for _, cell := range r.Extra {
		values = append(values, cell)
	}
	return values
}
