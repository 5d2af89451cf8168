package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Rect is a zero-based cell rectangle. A negative LastRow or LastCol means the
// range is open in that direction.
type Rect struct {
	FirstRow int
	FirstCol int
	LastRow  int
	LastCol  int
}

// ParseRect parses the cell part of an A1 range: "A1:Z1000", "1:1", "A:D",
// "B2" or "" for the whole sheet.
func ParseRect(cells string) (Rect, error) {
	cells = strings.ToUpper(strings.ReplaceAll(cells, "$", ""))
	if cells == "" {
		return Rect{LastRow: -1, LastCol: -1}, nil
	}

	start, end, isRange := strings.Cut(cells, ":")
	fr, fc, err := parseRef(start)
	if err != nil {
		return Rect{}, fmt.Errorf("invalid range %q: %w", cells, err)
	}
	if !isRange {
		rect := Rect{FirstRow: max(fr, 0), FirstCol: max(fc, 0), LastRow: fr, LastCol: fc}
		return rect, nil
	}
	lr, lc, err := parseRef(end)
	if err != nil {
		return Rect{}, fmt.Errorf("invalid range %q: %w", cells, err)
	}
	return Rect{FirstRow: max(fr, 0), FirstCol: max(fc, 0), LastRow: lr, LastCol: lc}, nil
}

// parseRef parses "B2", "B" or "2". Missing parts are returned as -1.
func parseRef(ref string) (row, col int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	letters, digits := ref[:i], ref[i:]
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	row, col = -1, -1
	if letters != "" {
		n, err := excelize.ColumnNameToNumber(letters)
		if err != nil {
			return 0, 0, err
		}
		col = n - 1
	}
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid row %q", digits)
		}
		row = n - 1
	}
	return row, col, nil
}

// TrimValues drops trailing empty cells of every row and trailing empty rows,
// the way the Sheets API shapes its responses.
func TrimValues(rows [][]interface{}) [][]interface{} {
	for i, r := range rows {
		end := len(r)
		for end > 0 && CellString(r, end-1) == "" {
			end--
		}
		rows[i] = r[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	if end == 0 {
		return nil
	}
	return rows[:end]
}
