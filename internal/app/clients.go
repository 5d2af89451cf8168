package app

import (
	"context"
	"fmt"

	"sheet_display/internal/config"
	"sheet_display/internal/credentials"
	"sheet_display/internal/document"
	"sheet_display/internal/metrics"
	"sheet_display/internal/provision"
	"sheet_display/internal/sheets"
	"sheet_display/internal/workbook"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Backend is the document API and template copier of the configured backend.
// API is throttled and instrumented.
type Backend struct {
	API    document.API
	Copier provision.Copier
}

// InitializeClients builds the backend selected by the configuration.
func InitializeClients(ctx context.Context, cfg *config.Config, m metrics.Provider) (*Backend, error) {
	log.Debug().Str("backend", cfg.Backend.Kind).Msg("Initializing clients")

	var (
		raw    document.API
		copier provision.Copier
	)
	switch cfg.Backend.Kind {
	case config.BackendWorkbook:
		store, err := workbook.NewStore(cfg.Backend.WorkbookDir)
		if err != nil {
			return nil, err
		}
		raw, copier = store, provision.NewWorkbookCopier(store)

	default:
		creds, err := loadCredentials(ctx, cfg.Credentials)
		if err != nil {
			return nil, err
		}
		sheetsClient, err := sheets.NewClient(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, err
		}
		driveCopier, err := provision.NewDriveCopier(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, err
		}
		raw, copier = sheetsClient, driveCopier
	}

	api := metrics.Instrument(document.Throttle(raw, document.NewLimiters(cfg.Quota)), m)

	log.Debug().
		Int("max_calls", cfg.Quota.MaxCalls).
		Dur("period", cfg.Quota.Period).
		Float64("global_per_second", cfg.Quota.GlobalPerSecond).
		Msg("Clients initialized successfully")
	return &Backend{API: api, Copier: copier}, nil
}

func loadCredentials(ctx context.Context, cfg config.CredentialsConfig) (*google.Credentials, error) {
	scopes := []string{credentials.ScopeSpreadsheets, credentials.ScopeDrive}
	if cfg.File != "" {
		log.Debug().Str("file", cfg.File).Msg("Using credentials file")
		return credentials.FromFile(ctx, cfg.File, scopes...)
	}
	creds, err := credentials.FromEnv(cfg.Suffix).Credentials(ctx, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account from environment: %w", err)
	}
	return creds, nil
}
