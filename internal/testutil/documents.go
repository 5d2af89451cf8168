package testutil

import (
	"context"
	"fmt"
	"sync"

	"sheet_display/internal/document"
)

var _ document.API = (*Documents)(nil)

// Documents is an in-process document.API keeping whole sheets as rows of strings.
// It follows the Sheets API conventions the checker depends on: trailing empty
// cells and rows are trimmed on read, and an unknown spreadsheet is an error.
type Documents struct {
	mu     sync.Mutex
	docs   map[string]*memoryDoc
	calls  []string
	failOn map[string]error
}

type memoryDoc struct {
	order  []string
	sheets map[string][][]string
}

func NewDocuments() *Documents {
	return &Documents{docs: map[string]*memoryDoc{}, failOn: map[string]error{}}
}

// AddSheet creates (or replaces) a sheet with the given rows.
func (m *Documents) AddSheet(spreadsheetID, sheet string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[spreadsheetID]
	if !ok {
		doc = &memoryDoc{sheets: map[string][][]string{}}
		m.docs[spreadsheetID] = doc
	}
	if _, exists := doc.sheets[sheet]; !exists {
		doc.order = append(doc.order, sheet)
	}
	doc.sheets[sheet] = copyRows(rows)
}

// Sheet returns a copy of the trimmed rows of a sheet.
func (m *Documents) Sheet(spreadsheetID, sheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[spreadsheetID]
	if !ok {
		return nil
	}
	return trimRows(copyRows(doc.sheets[sheet]))
}

// FailOn makes every call of op ("ListSheets", "ReadRange", ...) against
// spreadsheetID return err. A nil err clears the failure.
func (m *Documents) FailOn(op, spreadsheetID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + ":" + spreadsheetID
	if err == nil {
		delete(m.failOn, key)
		return
	}
	m.failOn[key] = err
}

// Calls returns the recorded "op:spreadsheet" call log.
func (m *Documents) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Documents) begin(op, spreadsheetID string) (*memoryDoc, error) {
	m.calls = append(m.calls, op+":"+spreadsheetID)
	if err := m.failOn[op+":"+spreadsheetID]; err != nil {
		return nil, err
	}
	doc, ok := m.docs[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %s: not found", spreadsheetID)
	}
	return doc, nil
}

func (m *Documents) ListSheets(_ context.Context, spreadsheetID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.begin("ListSheets", spreadsheetID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), doc.order...), nil
}

func (m *Documents) ReadRange(_ context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.begin("ReadRange", spreadsheetID)
	if err != nil {
		return nil, err
	}
	sheet, rect, err := doc.resolve(a1Range)
	if err != nil {
		return nil, err
	}

	var out [][]interface{}
	rows := doc.sheets[sheet]
	for r := rect.FirstRow; r < len(rows) && (rect.LastRow < 0 || r <= rect.LastRow); r++ {
		var row []interface{}
		for c := rect.FirstCol; c < len(rows[r]) && (rect.LastCol < 0 || c <= rect.LastCol); c++ {
			row = append(row, rows[r][c])
		}
		out = append(out, row)
	}
	return document.TrimValues(out), nil
}

func (m *Documents) UpdateRange(_ context.Context, spreadsheetID, a1Range string, values [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.begin("UpdateRange", spreadsheetID)
	if err != nil {
		return err
	}
	sheet, rect, err := doc.resolve(a1Range)
	if err != nil {
		return err
	}
	doc.sheets[sheet] = writeRows(doc.sheets[sheet], rect.FirstRow, rect.FirstCol, values)
	return nil
}

func (m *Documents) AppendRows(_ context.Context, spreadsheetID, a1Range string, rows [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.begin("AppendRows", spreadsheetID)
	if err != nil {
		return err
	}
	sheet, rect, err := doc.resolve(a1Range)
	if err != nil {
		return err
	}
	next := len(trimRows(doc.sheets[sheet]))
	doc.sheets[sheet] = writeRows(doc.sheets[sheet], next, rect.FirstCol, rows)
	return nil
}

func (d *memoryDoc) resolve(a1Range string) (string, document.Rect, error) {
	sheet, cells := document.SplitRange(a1Range)
	if sheet == "" {
		if len(d.order) == 0 {
			return "", document.Rect{}, fmt.Errorf("range %q: %w", a1Range, document.ErrSheetNotFound)
		}
		sheet = d.order[0]
	}
	if _, ok := d.sheets[sheet]; !ok {
		return "", document.Rect{}, fmt.Errorf("range %q: %w", a1Range, document.ErrSheetNotFound)
	}
	rect, err := document.ParseRect(cells)
	if err != nil {
		return "", document.Rect{}, err
	}
	return sheet, rect, nil
}

func writeRows(rows [][]string, firstRow, firstCol int, values [][]interface{}) [][]string {
	for i, v := range values {
		r := firstRow + i
		for len(rows) <= r {
			rows = append(rows, nil)
		}
		for j := range v {
			c := firstCol + j
			for len(rows[r]) <= c {
				rows[r] = append(rows[r], "")
			}
			rows[r][c] = document.CellString(v, j)
		}
	}
	return rows
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func trimRows(rows [][]string) [][]string {
	for i, r := range rows {
		end := len(r)
		for end > 0 && r[end-1] == "" {
			end--
		}
		rows[i] = r[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}
