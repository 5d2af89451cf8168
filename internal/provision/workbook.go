package provision

import (
	"context"

	"sheet_display/internal/workbook"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WorkbookCopier copies local workbooks. Sharing is not applicable and only
// logged.
type WorkbookCopier struct {
	store *workbook.Store
}

func NewWorkbookCopier(store *workbook.Store) *WorkbookCopier {
	return &WorkbookCopier{store: store}
}

func (w *WorkbookCopier) Copy(_ context.Context, templateID, name string) (string, error) {
	id := uuid.NewString()
	if err := w.store.Copy(templateID, id); err != nil {
		return "", err
	}
	log.Debug().Str("template_id", templateID).Str("spreadsheet_id", id).Str("name", name).Msg("Copied workbook")
	return id, nil
}

func (w *WorkbookCopier) Share(_ context.Context, fileID, email string) error {
	log.Info().Str("spreadsheet_id", fileID).Str("email", email).Msg("Workbook backend has no sharing, skipping")
	return nil
}
