package signing

import (
	"crypto/rsa"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evidenceledger/certissuer/internal/canonical"
	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/models"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func issuerKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		k, err := keys.GenerateRSAKey(keys.MinKeyBits)
		if err != nil {
			panic(err)
		}
		testKey = k
	})
	return testKey
}

func scenarioFacts() models.CertificateFacts {
	return models.CertificateFacts{
		Identity:          "9a4f3c2e-2d7b-4f5e-8a1c-6b0d9e8f7a65",
		SubjectName:       "Jane Doe",
		SubjectExternalID: "S100",
		CredentialTitle:   "BSc",
		ProgramName:       "Computer Science",
		IssueDate:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		IssuerName:        "PSU",
	}
}

func newPair(t *testing.T) (*Signer, *Verifier) {
	provider := keys.NewStaticProvider(issuerKey(t))
	return NewSigner(provider), NewVerifier(provider)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, verifier := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	require.Len(t, raw, 256)

	require.True(t, verifier.Verify(facts, sig))
	require.Equal(t, FailureNone, verifier.Check(facts, sig))
}

func TestSignaturesAreRandomized(t *testing.T) {
	signer, verifier := newPair(t)
	facts := scenarioFacts()

	first, err := signer.Sign(facts)
	require.NoError(t, err)
	second, err := signer.Sign(facts)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, verifier.Verify(facts, first))
	require.True(t, verifier.Verify(facts, second))
}

func TestTamperedFactsRejected(t *testing.T) {
	signer, verifier := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*models.CertificateFacts)
	}{
		{"degree", func(f *models.CertificateFacts) { f.CredentialTitle = "BA" }},
		{"identity", func(f *models.CertificateFacts) { f.Identity = "5d0c6f1a-0000-4000-8000-000000000000" }},
		{"name", func(f *models.CertificateFacts) { f.SubjectName = "John Doe" }},
		{"student id", func(f *models.CertificateFacts) { f.SubjectExternalID = "S101" }},
		{"program", func(f *models.CertificateFacts) { f.ProgramName = "Mathematics" }},
		{"issue date", func(f *models.CertificateFacts) { f.IssueDate = f.IssueDate.AddDate(0, 0, 1) }},
		{"issuer", func(f *models.CertificateFacts) { f.IssuerName = "Other University" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := facts
			tt.mutate(&tampered)

			require.False(t, verifier.Verify(tampered, sig))
			require.Equal(t, FailureMismatch, verifier.Check(tampered, sig))
		})
	}
}

func TestCorruptSignaturesFailClosed(t *testing.T) {
	signer, verifier := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)/2] ^= 0x01

	tests := []struct {
		name      string
		signature string
		failure   Failure
	}{
		{"empty", "", FailureMalformed},
		{"not base64", "%%% not base64 %%%", FailureMalformed},
		{"truncated text", sig[:len(sig)-7], FailureMalformed},
		{"truncated bytes", base64.StdEncoding.EncodeToString(raw[:128]), FailureMalformed},
		{"bit flip", base64.StdEncoding.EncodeToString(flipped), FailureMismatch},
		{"url alphabet", base64.RawURLEncoding.EncodeToString(raw) + "$", FailureMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, verifier.Verify(facts, tt.signature))
			})
			require.Equal(t, tt.failure, verifier.Check(facts, tt.signature))
		})
	}
}

func TestVerifyWithOtherKey(t *testing.T) {
	signer, _ := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	other, err := keys.GenerateRSAKey(keys.MinKeyBits)
	require.NoError(t, err)

	verifier := NewVerifier(keys.NewStaticPublicProvider(&other.PublicKey))
	require.False(t, verifier.Verify(facts, sig))
}

func TestVerifyWithoutKey(t *testing.T) {
	signer, _ := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	verifier := NewVerifier(keys.NewFileProvider("", ""))
	require.False(t, verifier.Verify(facts, sig))
	require.Equal(t, FailureKeyUnavailable, verifier.Check(facts, sig))
}

func TestVerifyIncompleteFacts(t *testing.T) {
	signer, verifier := newPair(t)
	facts := scenarioFacts()

	sig, err := signer.Sign(facts)
	require.NoError(t, err)

	facts.ProgramName = ""
	require.False(t, verifier.Verify(facts, sig))
	require.Equal(t, FailureIncompleteFacts, verifier.Check(facts, sig))
}

func TestSignErrors(t *testing.T) {
	t.Run("incomplete facts", func(t *testing.T) {
		signer, _ := newPair(t)
		facts := scenarioFacts()
		facts.SubjectName = ""

		_, err := signer.Sign(facts)
		require.ErrorIs(t, err, canonical.ErrIncompleteFacts)
	})

	t.Run("key unavailable", func(t *testing.T) {
		signer := NewSigner(keys.NewStaticPublicProvider(&issuerKey(t).PublicKey))

		_, err := signer.Sign(scenarioFacts())
		require.ErrorIs(t, err, keys.ErrKeyUnavailable)
	})
}
