package jwt

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/evidenceledger/certissuer/internal/keys"
)

// RoleAdmin is the only role tokens are issued for
const RoleAdmin = "admin"

// AdminClaims are the claims of an administrator bearer token
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues administrator tokens and publishes the issuer verification key
type Service struct {
	secret    []byte
	issuer    string
	expiry    time.Duration
	issuerKey keys.PublicKeyProvider
}

// NewService creates a new JWT service. Tokens are HMAC-signed with secret.
func NewService(issuer string, secret []byte, expiry time.Duration, issuerKey keys.PublicKeyProvider) (*Service, error) {
	if len(secret) < 16 {
		return nil, errors.New("JWT secret must be at least 16 bytes")
	}
	if expiry <= 0 {
		expiry = time.Hour
	}

	slog.Info("JWT service initialized", "issuer", issuer, "token_expiry", expiry)
	return &Service{
		secret:    secret,
		issuer:    issuer,
		expiry:    expiry,
		issuerKey: issuerKey,
	}, nil
}

// GenerateAdminToken creates a bearer token for an authenticated administrator
func (s *Service) GenerateAdminToken(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}

	slog.Debug("Admin token generated", "subject", username, "expiration", expiresAt)
	return tokenString, expiresAt, nil
}

// ParseAdminToken validates a bearer token and returns its claims
func (s *Service) ParseAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid admin token: %w", err)
	}

	if claims.Role != RoleAdmin {
		return nil, errors.New("invalid admin token: missing admin role")
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("invalid admin token: missing subject or id")
	}

	return claims, nil
}

// GetPublicKey returns the issuer public key in PEM format
func (s *Service) GetPublicKey() (string, error) {
	pub, err := s.issuerKey.PublicKey()
	if err != nil {
		return "", err
	}

	pemBytes, err := keys.EncodePublicKeyPEM(pub)
	if err != nil {
		return "", err
	}
	return string(pemBytes), nil
}

// GetJWKS returns the JSON Web Key Set holding the certificate verification key
func (s *Service) GetJWKS() (map[string]any, error) {
	pub, err := s.issuerKey.PublicKey()
	if err != nil {
		return nil, err
	}

	kid, err := keys.Fingerprint(pub)
	if err != nil {
		return nil, err
	}

	jk, err := jwk.Import(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to import issuer key: %w", err)
	}

	for k, v := range map[string]any{
		jwk.KeyUsageKey:  "sig",
		jwk.KeyIDKey:     kid,
		jwk.AlgorithmKey: "PS256",
	} {
		if err := jk.Set(k, v); err != nil {
			return nil, fmt.Errorf("failed to set %s on issuer key: %w", k, err)
		}
	}

	jwks := map[string]any{
		"keys": []any{jk},
	}
	return jwks, nil
}
