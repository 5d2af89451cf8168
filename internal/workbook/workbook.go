// Package workbook serves the document API from local .xlsx files, one file per
// spreadsheet id, so dashboards can be reconciled offline.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sheet_display/internal/document"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var _ document.API = (*Store)(nil)

// Store maps spreadsheet ids to <dir>/<id>.xlsx.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("workbook directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workbook directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file backing a spreadsheet id.
func (s *Store) Path(spreadsheetID string) string {
	return filepath.Join(s.dir, filepath.Base(spreadsheetID)+".xlsx")
}

// Create writes a new workbook with the given sheets, replacing any existing file.
func (s *Store) Create(spreadsheetID string, sheets ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()

	if len(sheets) == 0 {
		sheets = []string{"Sheet1"}
	}
	if err := f.SetSheetName("Sheet1", sheets[0]); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", sheets[0], err)
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}
	return f.SaveAs(s.Path(spreadsheetID))
}

// Copy duplicates a workbook under a new id.
func (s *Store) Copy(srcID, dstID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(srcID))
	if err != nil {
		return fmt.Errorf("failed to read workbook %s: %w", srcID, err)
	}
	return os.WriteFile(s.Path(dstID), data, 0o644)
}

func (s *Store) open(spreadsheetID string) (*excelize.File, error) {
	f, err := excelize.OpenFile(s.Path(spreadsheetID))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", spreadsheetID, err)
	}
	return f, nil
}

func (s *Store) ListSheets(_ context.Context, spreadsheetID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *Store) ReadRange(_ context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, rect, err := resolve(f, a1Range)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var out [][]interface{}
	for r := rect.FirstRow; r < len(rows) && (rect.LastRow < 0 || r <= rect.LastRow); r++ {
		row := []interface{}{}
		for c := rect.FirstCol; c < len(rows[r]) && (rect.LastCol < 0 || c <= rect.LastCol); c++ {
			row = append(row, rows[r][c])
		}
		out = append(out, row)
	}
	log.Debug().Str("spreadsheet_id", spreadsheetID).Str("range", a1Range).Int("rows", len(out)).Msg("Read workbook range")
	return document.TrimValues(out), nil
}

func (s *Store) UpdateRange(_ context.Context, spreadsheetID, a1Range string, values [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, rect, err := resolve(f, a1Range)
	if err != nil {
		return err
	}
	if err := writeRows(f, sheet, rect.FirstRow, rect.FirstCol, values); err != nil {
		return err
	}
	return f.Save()
}

func (s *Store) AppendRows(_ context.Context, spreadsheetID, a1Range string, rows [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, rect, err := resolve(f, a1Range)
	if err != nil {
		return err
	}
	existing, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	next := lastNonEmptyRow(existing) + 1
	if err := writeRows(f, sheet, next, rect.FirstCol, rows); err != nil {
		return err
	}
	return f.Save()
}

func resolve(f *excelize.File, a1Range string) (string, document.Rect, error) {
	sheet, cells := document.SplitRange(a1Range)
	list := f.GetSheetList()
	if sheet == "" {
		if len(list) == 0 {
			return "", document.Rect{}, fmt.Errorf("range %q: %w", a1Range, document.ErrSheetNotFound)
		}
		sheet = list[0]
	}
	if !document.HasSheet(list, sheet) {
		return "", document.Rect{}, fmt.Errorf("range %q: %w", a1Range, document.ErrSheetNotFound)
	}
	rect, err := document.ParseRect(cells)
	if err != nil {
		return "", document.Rect{}, err
	}
	return sheet, rect, nil
}

func writeRows(f *excelize.File, sheet string, firstRow, firstCol int, values [][]interface{}) error {
	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(firstCol+1, firstRow+i+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for j := range row {
			cells[j] = document.CellString(row, j)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", firstRow+i+1, sheet, err)
		}
	}
	return nil
}

func lastNonEmptyRow(rows [][]string) int {
	for i := len(rows) - 1; i >= 0; i-- {
		for _, cell := range rows[i] {
			if cell != "" {
				return i
			}
		}
	}
	return -1
}
