package settings

import (
	"context"
	"errors"
	"testing"

	"sheet_display/internal/schema"
	"sheet_display/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingHeader = []string{
	"sheet_name", "time_of_display (in sec)", "existing column", "columns in display",
	"display", "Title to display as", "photo column",
}

func toValues(rows ...[]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		for _, c := range r {
			out[i] = append(out[i], c)
		}
	}
	return out
}

func TestMergeSynthesizesDefaults(t *testing.T) {
	s := schema.SheetSchema{{Name: "Data", Columns: []string{"A", "B"}}}

	rows := Merge(nil, s)
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"Data", "10", "A,B", "", "last 5 row", "", ""}, rows[0].Values())
}

func TestMergePreservesOperatorFields(t *testing.T) {
	existing := toValues(
		settingHeader,
		[]string{"Data", "30", "A", "A,B", "all", "Sales", "C", "note"},
	)
	s := schema.SheetSchema{{Name: "Data", Columns: []string{"A", "B", "C"}}}

	rows := Merge(existing, s)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		SheetName:        "Data",
		TimeOfDisplay:    "30",
		ExistingColumns:  "A,B,C",
		ColumnsToDisplay: "A,B",
		Display:          "all",
		Title:            "Sales",
		PhotoColumn:      "C",
		Extra:            []string{"note"},
	}, rows[0])
}

func TestMergeDropsRemovedSheetsAndFollowsSchemaOrder(t *testing.T) {
	existing := toValues(
		settingHeader,
		[]string{"Old", "10", "A"},
		[]string{"Second", "5", "A"},
		[]string{"short", "1"},
	)
	s := schema.SheetSchema{
		{Name: "First", Columns: []string{"A"}},
		{Name: "Second", Columns: nil},
	}

	rows := Merge(existing, s)
	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0].SheetName)
	assert.Equal(t, "Second", rows[1].SheetName)
	assert.Equal(t, "5", rows[1].TimeOfDisplay)
	assert.Equal(t, "", rows[1].ExistingColumns)
}

func TestMergeFirstDuplicateWins(t *testing.T) {
	existing := toValues(
		settingHeader,
		[]string{"Data", "15", "A"},
		[]string{"Data", "99", "A"},
	)
	rows := Merge(existing, schema.SheetSchema{{Name: "Data", Columns: []string{"A"}}})
	require.Len(t, rows, 1)
	assert.Equal(t, "15", rows[0].TimeOfDisplay)
}

func TestMergeIsIdempotent(t *testing.T) {
	s := schema.SheetSchema{
		{Name: "Data", Columns: []string{"A", "B"}},
		{Name: "Photos", Columns: []string{"A"}},
	}
	existing := toValues(settingHeader, []string{"Data", "20", "A", "B", "all"})

	first := Table(Merge(existing, s), existing)
	second := Table(Merge(first, s), first)
	assert.Equal(t, first, second)
}

func TestTablePadsDroppedRows(t *testing.T) {
	previous := toValues(settingHeader, []string{"A", "1", "A"}, []string{"B", "1", "A", "", "", "", "", "x"})
	values := Table(nil, previous)

	require.Len(t, values, 3)
	assert.Equal(t, Header, values[0])
	assert.Len(t, values[1], 7)
	assert.Len(t, values[2], 8)
	for _, cell := range values[2] {
		assert.Equal(t, "", cell)
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	ctx := context.Background()
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Data", []string{"a", "b"}, []string{"1", "2"})
	docs.AddSheet("X", "Setting", settingHeader)

	s, err := schema.Extract(ctx, docs, "X")
	require.NoError(t, err)

	written, err := Reconcile(ctx, docs, "X", s)
	require.NoError(t, err)
	assert.True(t, written)

	assert.Equal(t, [][]string{
		settingHeader,
		{"Data", "10", "A,B", "", "last 5 row"},
	}, docs.Sheet("X", "Setting"))
}

func TestReconcileClearsDroppedRows(t *testing.T) {
	ctx := context.Background()
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Data", []string{"a"})
	docs.AddSheet("X", "Setting",
		settingHeader,
		[]string{"Gone", "10", "A", "", "last 5 row"},
		[]string{"Data", "45", "A,B", "A", "all", "Title"},
	)

	written, err := Reconcile(ctx, docs, "X", schema.SheetSchema{{Name: "Data", Columns: []string{"A"}}})
	require.NoError(t, err)
	assert.True(t, written)

	assert.Equal(t, [][]string{
		settingHeader,
		{"Data", "45", "A", "A", "all", "Title"},
	}, docs.Sheet("X", "Setting"))
}

func TestReconcileDoesNotShiftDroppedCellsIntoKeptRows(t *testing.T) {
	ctx := context.Background()
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Setting",
		settingHeader,
		[]string{"Gone", "10", "A", "", "last 5 row", "", "", "note-for-Gone"},
		[]string{"Data", "45", "A,B", "A", "all", "Title"},
	)
	s := schema.SheetSchema{{Name: "Data", Columns: []string{"A"}}}

	for pass := 0; pass < 2; pass++ {
		_, err := Reconcile(ctx, docs, "X", s)
		require.NoError(t, err)
	}

	assert.Equal(t, [][]string{
		settingHeader,
		{"Data", "45", "A", "A", "all", "Title"},
	}, docs.Sheet("X", "Setting"))
}

func TestTablePadsRowsToPreviousWidth(t *testing.T) {
	previous := toValues(settingHeader, []string{"Gone", "10", "A", "", "", "", "", "note"})
	values := Table([]Row{NewRow("Data", "A")}, previous)

	require.Len(t, values, 2)
	assert.Len(t, values[0], 7)
	assert.Equal(t, []interface{}{"Data", "10", "A", "", "last 5 row", "", "", ""}, values[1])
}

func TestReconcileWithoutSettingSheet(t *testing.T) {
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Data", []string{"a"})

	written, err := Reconcile(context.Background(), docs, "X", schema.SheetSchema{{Name: "Data"}})
	require.NoError(t, err)
	assert.False(t, written)
	assert.NotContains(t, docs.Calls(), "UpdateRange:X")
}

func TestReconcileWrapsWriteErrors(t *testing.T) {
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Setting", settingHeader)
	boom := errors.New("quota")
	docs.FailOn("UpdateRange", "X", boom)

	written, err := Reconcile(context.Background(), docs, "X", nil)
	assert.False(t, written)
	assert.ErrorIs(t, err, boom)
}

func TestLoadParsesDirectives(t *testing.T) {
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Setting",
		settingHeader,
		[]string{"Data", "30", "A,B,C", " A , C ,", "last 5 row", "Sales", "D"},
		[]string{"Hidden", "0", "A", "A"},
		[]string{"Broken", "soon", "A"},
		[]string{"Plain", "10", "A"},
	)

	displays, err := Load(context.Background(), docs, "X")
	require.NoError(t, err)
	require.Len(t, displays, 2)

	assert.Equal(t, Display{
		SheetName:     "Data",
		TimeOfDisplay: 30,
		Columns:       []string{"A", "C"},
		Mode:          "last 5 row",
		Title:         "Sales",
		PhotoColumn:   "D",
	}, displays[0])
	assert.Equal(t, "Plain", displays[1].SheetName)
	assert.Empty(t, displays[1].Columns)
	assert.Empty(t, displays[1].PhotoColumn)
}

func TestApplyReportsAddedAndDroppedSheets(t *testing.T) {
	docs := testutil.NewDocuments()
	docs.AddSheet("X", "Setting",
		settingHeader,
		[]string{"Gone", "10", "A"},
		[]string{"Kept", "10", "A"},
	)
	s := schema.SheetSchema{
		{Name: "Kept", Columns: []string{"A"}},
		{Name: "New", Columns: []string{"A", "B"}},
	}

	change, err := Apply(context.Background(), docs, "X", s)
	require.NoError(t, err)
	assert.True(t, change.Written)
	assert.Equal(t, 2, change.Rows)
	assert.Equal(t, []string{"New"}, change.Added)
	assert.Equal(t, []string{"Gone"}, change.Dropped)
}
