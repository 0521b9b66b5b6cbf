package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evidenceledger/certissuer/internal/certconfig"
	"github.com/evidenceledger/certissuer/internal/keys"
)

func testConfig(t *testing.T) certconfig.Config {
	t.Helper()
	dir := t.TempDir()

	return certconfig.Config{
		Port:           "0",
		BaseURL:        "https://certs.example.edu",
		DatabasePath:   filepath.Join(dir, "data", "certissuer.db"),
		ArtifactDir:    filepath.Join(dir, "data", "artifacts"),
		PrivateKeyPath: filepath.Join(dir, "keys", keys.PrivateKeyFile),
		PublicKeyPath:  filepath.Join(dir, "keys", keys.PublicKeyFile),
		IssuerName:     certconfig.DefaultIssuerName,
		AdminPassword:  "s3cret-password",
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		TokenExpiry:    certconfig.DefaultTokenExpiry,
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	key, err := keys.GenerateRSAKey(keys.MinKeyBits)
	require.NoError(t, err)
	_, _, err = keys.WriteKeyPair(filepath.Dir(cfg.PrivateKeyPath), key)
	require.NoError(t, err)

	srv, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.db.Close() })

	resp, err := srv.api.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the issuer key is served from memory after startup
	require.NoError(t, os.Remove(cfg.PublicKeyPath))
	resp, err = srv.api.App().Test(httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ok, err := srv.db.ValidateAdmin(context.Background(), AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewWithoutKey(t *testing.T) {
	cfg := testConfig(t)

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, keys.ErrKeyUnavailable)
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, err := New(context.Background(), cfg)
	require.ErrorContains(t, err, "invalid configuration")
}

func TestNewMismatchedKeys(t *testing.T) {
	cfg := testConfig(t)

	first, err := keys.GenerateRSAKey(keys.MinKeyBits)
	require.NoError(t, err)
	second, err := keys.GenerateRSAKey(keys.MinKeyBits)
	require.NoError(t, err)

	dir := filepath.Dir(cfg.PrivateKeyPath)
	_, _, err = keys.WriteKeyPair(dir, first)
	require.NoError(t, err)

	pubPEM, err := keys.EncodePublicKeyPEM(&second.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.PublicKeyPath, pubPEM, 0o644))

	_, err = New(context.Background(), cfg)
	require.ErrorIs(t, err, keys.ErrKeyUnavailable)
}
