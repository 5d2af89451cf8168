package provision

import (
	"context"
	"errors"
	"testing"
	"time"

	"sheet_display/internal/directory"
	"sheet_display/internal/testutil"
	"sheet_display/internal/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCopier struct {
	copied   []string
	shared   map[string]string
	copyErr  error
	shareErr error
}

func (f *fakeCopier) Copy(_ context.Context, templateID, name string) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	f.copied = append(f.copied, templateID+"->"+name)
	return "new-id", nil
}

func (f *fakeCopier) Share(_ context.Context, fileID, email string) error {
	if f.shareErr != nil {
		return f.shareErr
	}
	f.shared[fileID] = email
	return nil
}

type recordingAnnouncer struct {
	names []string
}

func (r *recordingAnnouncer) Provisioned(_ context.Context, name, _ string) error {
	r.names = append(r.names, name)
	return errors.New("ntfy down")
}

func newDirectory() *testutil.Documents {
	docs := testutil.NewDocuments()
	docs.AddSheet("dir", "Thana Spreadsheets", []string{"Thana Name", "Email", "Created Time", "Spreadsheet ID"})
	return docs
}

func TestProvisionCopiesSharesAndRegisters(t *testing.T) {
	docs := newDirectory()
	copier := &fakeCopier{shared: map[string]string{}}
	announcer := &recordingAnnouncer{}
	p := New(copier, docs, "template", "dir", announcer)
	p.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }

	entry, err := p.Provision(context.Background(), Request{Name: " North ", Email: "north@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "new-id", entry.SpreadsheetID)
	assert.Equal(t, []string{"template->North Spreadsheet"}, copier.copied)
	assert.Equal(t, "north@example.com", copier.shared["new-id"])
	assert.Equal(t, []string{"North"}, announcer.names)
	assert.Equal(t,
		[]string{"North", "north@example.com", "2024-05-06 07:08:09", "new-id"},
		docs.Sheet("dir", "Thana Spreadsheets")[1])
}

func TestProvisionValidatesRequest(t *testing.T) {
	copier := &fakeCopier{shared: map[string]string{}}
	p := New(copier, newDirectory(), "template", "dir", nil)

	_, err := p.Provision(context.Background(), Request{Name: "", Email: "a@example.com"})
	assert.Error(t, err)

	_, err = p.Provision(context.Background(), Request{Name: "North", Email: "not-an-email"})
	assert.Error(t, err)
	assert.Empty(t, copier.copied)
}

func TestProvisionStopsOnShareFailure(t *testing.T) {
	docs := newDirectory()
	boom := errors.New("forbidden")
	p := New(&fakeCopier{shared: map[string]string{}, shareErr: boom}, docs, "template", "dir", nil)

	_, err := p.Provision(context.Background(), Request{Name: "North", Email: "north@example.com"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, docs.Sheet("dir", "Thana Spreadsheets"), 1)
}

func TestProvisionRequiresTemplate(t *testing.T) {
	p := New(&fakeCopier{shared: map[string]string{}}, newDirectory(), "", "dir", nil)
	_, err := p.Provision(context.Background(), Request{Name: "North", Email: "north@example.com"})
	assert.Error(t, err)
}

func TestProvisionWithWorkbooks(t *testing.T) {
	ctx := context.Background()
	store, err := workbook.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Create("template", "Data", "Setting"))
	require.NoError(t, store.Create("dir", "Thana Spreadsheets"))
	_, err = directory.EnsureHeader(ctx, store, "dir")
	require.NoError(t, err)

	p := New(NewWorkbookCopier(store), store, "template", "dir", nil)
	entry, err := p.Provision(ctx, Request{Name: "North", Email: "north@example.com"})
	require.NoError(t, err)

	sheets, err := store.ListSheets(ctx, entry.SpreadsheetID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Setting"}, sheets)

	ids, err := directory.ListSpreadsheetIDs(ctx, store, "dir")
	require.NoError(t, err)
	assert.Equal(t, []string{entry.SpreadsheetID}, ids)
}
