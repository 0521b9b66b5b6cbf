package signing

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/evidenceledger/certissuer/internal/canonical"
	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/models"
)

// Failure is the internal reason a signature did not verify.
// It is for logs and tests only; callers of Verify see a boolean.
type Failure string

const (
	FailureNone            Failure = ""
	FailureIncompleteFacts Failure = "incomplete_facts"
	FailureKeyUnavailable  Failure = "key_unavailable"
	FailureMalformed       Failure = "malformed_signature"
	FailureMismatch        Failure = "signature_mismatch"
)

// Verifier checks issuer signatures with the public key only
type Verifier struct {
	keys keys.PublicKeyProvider
}

// NewVerifier creates a verifier backed by the given key provider
func NewVerifier(provider keys.PublicKeyProvider) *Verifier {
	return &Verifier{keys: provider}
}

// Verify reports whether signature is a valid issuer signature over facts.
// It never fails: every problem is a false result.
func (v *Verifier) Verify(facts models.CertificateFacts, signature string) bool {
	failure := v.Check(facts, signature)
	if failure != FailureNone {
		slog.Info("Certificate signature rejected", "uuid", facts.Identity, "cause", string(failure))
		return false
	}
	return true
}

// Check verifies signature and returns why it failed, or FailureNone.
// The payload is always rebuilt from facts; a caller-supplied encoding is never trusted.
// Signature bytes are never compared directly, so re-signed certificates still pass.
func (v *Verifier) Check(facts models.CertificateFacts, signature string) Failure {
	payload, err := canonical.Canonicalize(facts)
	if err != nil {
		return FailureIncompleteFacts
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(sig) == 0 {
		return FailureMalformed
	}

	pub, err := v.keys.PublicKey()
	if err != nil {
		slog.Error("Public key unavailable for verification", "error", err)
		return FailureKeyUnavailable
	}

	if len(sig) != pub.Size() {
		return FailureMalformed
	}

	digest := sha256.Sum256(payload)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, pssOptions); err != nil {
		return FailureMismatch
	}

	return FailureNone
}
