package credentials

import (
	"context"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"golang.org/x/oauth2/google"
)

const (
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDrive        = "https://www.googleapis.com/auth/drive"
)

// ServiceAccount holds the fields of a Google service-account key.
type ServiceAccount struct {
	Type                    string `json:"type" validate:"required|in:service_account"`
	ProjectID               string `json:"project_id" validate:"required"`
	PrivateKeyID            string `json:"private_key_id" validate:"required"`
	PrivateKey              string `json:"private_key" validate:"required"`
	ClientEmail             string `json:"client_email" validate:"required|email"`
	ClientID                string `json:"client_id" validate:"required"`
	AuthURI                 string `json:"auth_uri" validate:"required|fullUrl"`
	TokenURI                string `json:"token_uri" validate:"required|fullUrl"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url" validate:"required|fullUrl"`
	ClientX509CertURL       string `json:"client_x509_cert_url" validate:"required|fullUrl"`
}

// Env variable names for each field, in struct order.
var envNames = []string{
	"GOOGLE_SERVICE_ACCOUNT_TYPE",
	"GOOGLE_PROJECT_ID",
	"GOOGLE_PRIVATE_KEY_ID",
	"GOOGLE_PRIVATE_KEY",
	"GOOGLE_CLIENT_EMAIL",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_AUTH_URI",
	"GOOGLE_TOKEN_URI",
	"GOOGLE_AUTH_PROVIDER_X509_CERT_URL",
	"GOOGLE_CLIENT_X509_CERT_URL",
}

// FromEnv reads the service account from environment variables. suffix is
// appended to every name, e.g. "2" for GOOGLE_PROJECT_ID2.
func FromEnv(suffix string) ServiceAccount {
	get := func(i int) string { return os.Getenv(envNames[i] + suffix) }
	sa := ServiceAccount{
		Type:                    get(0),
		ProjectID:               get(1),
		PrivateKeyID:            get(2),
		PrivateKey:              get(3),
		ClientEmail:             get(4),
		ClientID:                get(5),
		AuthURI:                 get(6),
		TokenURI:                get(7),
		AuthProviderX509CertURL: get(8),
		ClientX509CertURL:       get(9),
	}
	sa.Normalize()
	return sa
}

// Normalize restores newlines escaped as "\n" in the private key, which is how
// multi-line keys survive single-line env files.
func (sa *ServiceAccount) Normalize() {
	sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")
}

func (sa ServiceAccount) Validate() error {
	v := validate.Struct(&sa)
	if !v.Validate() {
		return fmt.Errorf("invalid service account: %w", v.Errors.OneError())
	}
	block, _ := pem.Decode([]byte(sa.PrivateKey))
	if block == nil {
		return errors.New("invalid service account: private_key is not PEM encoded (escaped newlines?)")
	}
	return nil
}

// JSON renders the key file form of the account.
func (sa ServiceAccount) JSON() ([]byte, error) {
	return json.Marshal(sa)
}

// Credentials validates the account and builds oauth2 credentials for scopes.
func (sa ServiceAccount) Credentials(ctx context.Context, scopes ...string) (*google.Credentials, error) {
	if err := sa.Validate(); err != nil {
		return nil, err
	}
	data, err := sa.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account: %w", err)
	}
	return FromJSON(ctx, data, scopes...)
}

// FromFile loads credentials from a key file on disk.
func FromFile(ctx context.Context, path string, scopes ...string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return FromJSON(ctx, data, scopes...)
}

func FromJSON(ctx context.Context, data []byte, scopes ...string) (*google.Credentials, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build credentials: %w", err)
	}
	return creds, nil
}
