package lifecycle

import (
	"context"
	"log/slog"
	"strings"

	"github.com/evidenceledger/certissuer/internal/models"
)

// Revoke marks a certificate as revoked. There is no way back.
// Revoking again replaces the stored reason; no history is kept.
func (s *Service) Revoke(ctx context.Context, identity, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRevocationReason
	}

	if err := s.store.MarkRevoked(ctx, identity, reason); err != nil {
		return err
	}

	slog.Info("Certificate revoked", "uuid", identity, "reason", reason)
	return nil
}

// Get returns the stored certificate, or models.ErrNotFound
func (s *Service) Get(ctx context.Context, identity string) (*models.SignedCertificate, error) {
	cert, err := s.store.FindCertificate(ctx, identity)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, models.ErrNotFound
	}
	return cert, nil
}

// List returns every certificate ever issued, revoked ones included
func (s *Service) List(ctx context.Context) ([]models.SignedCertificate, error) {
	return s.store.ListCertificates(ctx)
}
