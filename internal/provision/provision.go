// Package provision creates a dashboard spreadsheet for a new organization and
// registers it in the directory.
package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sheet_display/internal/directory"
	"sheet_display/internal/document"

	"github.com/gookit/validate"
	"github.com/rs/zerolog/log"
)

// Copier clones the template and grants access to the copy.
type Copier interface {
	Copy(ctx context.Context, templateID, name string) (string, error)
	Share(ctx context.Context, fileID, email string) error
}

// Announcer is told about every provisioned dashboard.
type Announcer interface {
	Provisioned(ctx context.Context, name, spreadsheetID string) error
}

type Request struct {
	Name  string `validate:"required"`
	Email string `validate:"required|email"`
}

type Provisioner struct {
	copier      Copier
	api         document.API
	templateID  string
	directoryID string
	announcer   Announcer
	now         func() time.Time
}

func New(copier Copier, api document.API, templateID, directoryID string, announcer Announcer) *Provisioner {
	return &Provisioner{
		copier:      copier,
		api:         api,
		templateID:  templateID,
		directoryID: directoryID,
		announcer:   announcer,
		now:         time.Now,
	}
}

// SpreadsheetName is the title given to the copy made for name.
func SpreadsheetName(name string) string {
	return name + " Spreadsheet"
}

// Provision copies the template, shares the copy with the requester as a
// writer and appends it to the directory.
func (p *Provisioner) Provision(ctx context.Context, req Request) (directory.Entry, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	v := validate.Struct(&req)
	if !v.Validate() {
		return directory.Entry{}, fmt.Errorf("invalid request: %w", v.Errors.OneError())
	}
	if p.templateID == "" {
		return directory.Entry{}, errors.New("template spreadsheet id is not configured")
	}

	id, err := p.copier.Copy(ctx, p.templateID, SpreadsheetName(req.Name))
	if err != nil {
		return directory.Entry{}, fmt.Errorf("failed to copy template: %w", err)
	}
	if err := p.copier.Share(ctx, id, req.Email); err != nil {
		return directory.Entry{}, fmt.Errorf("failed to share spreadsheet %s: %w", id, err)
	}

	entry := directory.Entry{
		Name:          req.Name,
		Contact:       req.Email,
		Created:       p.now(),
		SpreadsheetID: id,
	}
	if err := directory.Append(ctx, p.api, p.directoryID, entry); err != nil {
		return directory.Entry{}, err
	}

	log.Info().
		Str("name", req.Name).
		Str("spreadsheet_id", id).
		Msg("Created new spreadsheet")

	if p.announcer != nil {
		if err := p.announcer.Provisioned(ctx, req.Name, id); err != nil {
			log.Warn().Err(err).Msg("Failed to announce new spreadsheet")
		}
	}
	return entry, nil
}
