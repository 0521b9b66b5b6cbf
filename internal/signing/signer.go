// Package signing signs and verifies canonical certificate payloads with RSA-PSS over SHA-256.
package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"

	"github.com/evidenceledger/certissuer/internal/canonical"
	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/models"
)

// Signer produces issuer signatures. It is the only holder of the private key.
type Signer struct {
	keys keys.PrivateKeyProvider
}

// NewSigner creates a signer backed by the given key provider
func NewSigner(provider keys.PrivateKeyProvider) *Signer {
	return &Signer{keys: provider}
}

// Sign canonicalizes facts and signs them.
// The result is base64 (standard alphabet, padded). PSS salts are random, so
// signing the same facts twice yields different, equally valid signatures.
func (s *Signer) Sign(facts models.CertificateFacts) (string, error) {
	payload, err := canonical.Canonicalize(facts)
	if err != nil {
		return "", err
	}

	key, err := s.keys.PrivateKey()
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return "", errl.Errorf("failed to sign certificate: %w", err)
	}

	slog.Debug("Certificate signed", "uuid", facts.Identity, "payload_length", len(payload))
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Salt is as long as the key allows when signing; any length is accepted when
// verifying.
var pssOptions = &rsa.PSSOptions{
	SaltLength: rsa.PSSSaltLengthAuto,
	Hash:       crypto.SHA256,
}
