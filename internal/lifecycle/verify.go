package lifecycle

import (
	"context"
	"log/slog"

	"github.com/evidenceledger/certissuer/internal/models"
)

// Verify checks a certificate by its identity. It always returns one of the
// four outcomes; internal failures are logged and reported as INVALID.
// A revoked certificate is reported as REVOKED without evaluating its signature.
func (s *Service) Verify(ctx context.Context, identity string) models.VerificationResult {
	cert, err := s.store.FindCertificate(ctx, identity)
	if err != nil {
		slog.Error("Certificate lookup failed during verification", "uuid", identity, "error", err)
		return models.VerificationResult{
			Status:  models.StatusInvalid,
			Message: "Certificate could not be verified",
		}
	}

	if cert == nil {
		return models.VerificationResult{
			Status:  models.StatusNotFound,
			Message: "Certificate not found",
		}
	}

	if cert.Revoked {
		return models.VerificationResult{
			Status:  models.StatusRevoked,
			Message: "Certificate has been revoked",
			Reason:  cert.RevocationReason,
		}
	}

	facts := cert.Facts()
	if !s.verifier.Verify(facts, cert.Signature) {
		return models.VerificationResult{
			Status:  models.StatusInvalid,
			Message: "Certificate signature is invalid",
		}
	}

	return models.VerificationResult{
		Status:      models.StatusValid,
		Message:     "Certificate is valid",
		Certificate: models.NewVerifiedDetails(facts),
	}
}
