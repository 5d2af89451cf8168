package provision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveCopier copies and shares files through the Drive API.
type DriveCopier struct {
	service *drive.Service
}

func NewDriveCopier(ctx context.Context, opts ...option.ClientOption) (*DriveCopier, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveCopier{service: service}, nil
}

func (d *DriveCopier) Copy(ctx context.Context, templateID, name string) (string, error) {
	log.Debug().Str("template_id", templateID).Str("name", name).Msg("Copying template")
	file, err := d.service.Files.Copy(templateID, &drive.File{Name: name}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to copy file %s: %w", templateID, err)
	}
	return file.Id, nil
}

func (d *DriveCopier) Share(ctx context.Context, fileID, email string) error {
	log.Debug().Str("file_id", fileID).Str("email", email).Msg("Sharing file")
	_, err := d.service.Permissions.Create(fileID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to share file %s: %w", fileID, err)
	}
	return nil
}
