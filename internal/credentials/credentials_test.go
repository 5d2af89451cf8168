package credentials

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func validAccount(t *testing.T) ServiceAccount {
	return ServiceAccount{
		Type:                    "service_account",
		ProjectID:               "dashboards",
		PrivateKeyID:            "abc123",
		PrivateKey:              testKey(t),
		ClientEmail:             "checker@dashboards.iam.gserviceaccount.com",
		ClientID:                "1234567890",
		AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
		TokenURI:                "https://oauth2.googleapis.com/token",
		AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
		ClientX509CertURL:       "https://www.googleapis.com/robot/v1/metadata/x509/checker",
	}
}

func TestValidateAcceptsCompleteAccount(t *testing.T) {
	assert.NoError(t, validAccount(t).Validate())
}

func TestValidateRejectsMissingField(t *testing.T) {
	sa := validAccount(t)
	sa.ClientEmail = ""
	assert.Error(t, sa.Validate())

	sa = validAccount(t)
	sa.TokenURI = ""
	assert.Error(t, sa.Validate())
}

func TestValidateRejectsWrongType(t *testing.T) {
	sa := validAccount(t)
	sa.Type = "authorized_user"
	assert.Error(t, sa.Validate())
}

func TestValidateRejectsEscapedKey(t *testing.T) {
	sa := validAccount(t)
	sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, "\n", `\n`)

	err := sa.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PEM")

	sa.Normalize()
	assert.NoError(t, sa.Validate())
}

func TestFromEnvRestoresNewlines(t *testing.T) {
	sa := validAccount(t)
	values := []string{
		sa.Type, sa.ProjectID, sa.PrivateKeyID, strings.ReplaceAll(sa.PrivateKey, "\n", `\n`),
		sa.ClientEmail, sa.ClientID, sa.AuthURI, sa.TokenURI, sa.AuthProviderX509CertURL, sa.ClientX509CertURL,
	}
	for i, name := range envNames {
		t.Setenv(name+"2", values[i])
	}

	got := FromEnv("2")
	assert.Equal(t, sa, got)
	assert.NoError(t, got.Validate())
}

func TestCredentialsBuildsTokenSource(t *testing.T) {
	creds, err := validAccount(t).Credentials(context.Background(), ScopeSpreadsheets)
	require.NoError(t, err)
	assert.NotNil(t, creds.TokenSource)
	assert.Equal(t, "dashboards", creds.ProjectID)
}

func TestCredentialsFailsOnInvalidAccount(t *testing.T) {
	_, err := ServiceAccount{}.Credentials(context.Background(), ScopeSpreadsheets)
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	data, err := validAccount(t).JSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	creds, err := FromFile(context.Background(), path, ScopeSpreadsheets, ScopeDrive)
	require.NoError(t, err)
	assert.NotNil(t, creds)

	_, err = FromFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
