package jwt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/evidenceledger/certissuer/internal/keys"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, expiry time.Duration) (*Service, *keys.StaticProvider) {
	t.Helper()
	key, err := keys.GenerateRSAKey(keys.MinKeyBits)
	require.NoError(t, err)
	provider := keys.NewStaticProvider(key)

	s, err := NewService("https://certs.example.edu", []byte(testSecret), expiry, provider)
	require.NoError(t, err)
	return s, provider
}

func TestNewServiceRejectsShortSecret(t *testing.T) {
	_, err := NewService("x", []byte("short"), time.Hour, keys.NewStaticProvider(nil))
	require.Error(t, err)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	s, _ := newTestService(t, time.Hour)

	token, expiresAt, err := s.GenerateAdminToken("admin")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ParseAdminToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestParseAdminTokenRejects(t *testing.T) {
	s, _ := newTestService(t, time.Hour)

	other, err := NewService("https://other.example.edu", []byte(testSecret), time.Hour, nil)
	require.NoError(t, err)
	foreignIssuer, _, err := other.GenerateAdminToken("admin")
	require.NoError(t, err)

	wrongKey, err := NewService("https://certs.example.edu", []byte(strings.Repeat("z", 32)), time.Hour, nil)
	require.NoError(t, err)
	wrongSecret, _, err := wrongKey.GenerateAdminToken("admin")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://certs.example.edu",
			Subject:   "admin",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://certs.example.edu",
			Subject:   "admin",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	noRoleToken, err := noRole.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"foreign issuer", foreignIssuer},
		{"wrong secret", wrongSecret},
		{"expired", expiredToken},
		{"no role", noRoleToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := s.ParseAdminToken(tt.token)
			require.Error(t, err)
			require.Nil(t, claims)
		})
	}
}

func TestGetJWKS(t *testing.T) {
	s, provider := newTestService(t, time.Hour)

	jwks, err := s.GetJWKS()
	require.NoError(t, err)

	raw, err := json.Marshal(jwks)
	require.NoError(t, err)

	var decoded struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Keys, 1)

	pub, err := provider.PublicKey()
	require.NoError(t, err)
	kid, err := keys.Fingerprint(pub)
	require.NoError(t, err)

	k := decoded.Keys[0]
	require.Equal(t, "RSA", k["kty"])
	require.Equal(t, "sig", k["use"])
	require.Equal(t, "PS256", k["alg"])
	require.Equal(t, kid, k["kid"])
}

func TestGetPublicKey(t *testing.T) {
	s, provider := newTestService(t, time.Hour)

	pemText, err := s.GetPublicKey()
	require.NoError(t, err)

	parsed, err := keys.ParsePublicKeyPEM([]byte(pemText))
	require.NoError(t, err)

	pub, err := provider.PublicKey()
	require.NoError(t, err)
	require.True(t, pub.Equal(parsed))
}
