// Package lifecycle issues, revokes and verifies academic certificates.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

// DefaultRevocationReason is stored when a revocation carries no reason
const DefaultRevocationReason = "No reason provided"

// ErrInvalidRequest is returned when an issuance request is missing data
var ErrInvalidRequest = errors.New("invalid issuance request")

// Signer signs certificate facts
type Signer interface {
	Sign(facts models.CertificateFacts) (string, error)
}

// Verifier checks a signature against certificate facts
type Verifier interface {
	Verify(facts models.CertificateFacts, signature string) bool
}

// Store is the record store holding subjects and certificates.
// Implementations enforce uniqueness of the subject external ID and the
// certificate identity. Lookups return (nil, nil) when nothing matches.
type Store interface {
	FindCertificate(ctx context.Context, identity string) (*models.SignedCertificate, error)
	FindSubject(ctx context.Context, externalID string) (*models.Subject, error)
	// InsertSubject fills in subject.ID, or fails with models.ErrSubjectExists
	InsertSubject(ctx context.Context, subject *models.Subject) error
	InsertCertificate(ctx context.Context, cert *models.SignedCertificate) error
	// MarkRevoked fails with models.ErrNotFound for an unknown identity
	MarkRevoked(ctx context.Context, identity, reason string) error
	ListCertificates(ctx context.Context) ([]models.SignedCertificate, error)
}

// IDProvider generates certificate identities
type IDProvider interface {
	ID() (string, error)
}

// Renderer turns an issued certificate into a human-facing artifact and
// returns where it was stored
type Renderer interface {
	Render(ctx context.Context, cert *models.SignedCertificate) (string, error)
	// Discard removes an artifact whose certificate was never stored
	Discard(ctx context.Context, locator string) error
}

// Notifier tells a subject that a certificate was issued to them
type Notifier interface {
	NotifyIssued(ctx context.Context, cert *models.SignedCertificate, verificationURL string) error
}

// UUIDProvider generates random (version 4) UUIDs
type UUIDProvider struct{}

// ID returns a new random UUID
func (UUIDProvider) ID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errl.Errorf("failed to generate certificate identity: %w", err)
	}
	return id.String(), nil
}

// Config holds the issuer-wide settings of the service
type Config struct {
	// IssuerName is embedded in every certificate payload
	IssuerName string
	// BaseURL is the public URL verification links point to
	BaseURL string
}

// Service orchestrates the certificate lifecycle
type Service struct {
	cfg      Config
	signer   Signer
	verifier Verifier
	store    Store
	ids      IDProvider
	renderer Renderer
	notifier Notifier
	now      func() time.Time
}

// Option configures optional collaborators of the Service
type Option func(*Service)

// WithRenderer attaches an artifact renderer
func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithNotifier attaches an issuance notifier
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithIDProvider replaces the default UUID generator
func WithIDProvider(ids IDProvider) Option {
	return func(s *Service) { s.ids = ids }
}

// New creates a lifecycle service
func New(cfg Config, signer Signer, verifier Verifier, store Store, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		signer:   signer,
		verifier: verifier,
		store:    store,
		ids:      UUIDProvider{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerificationURL is the public page where a certificate can be checked
func VerificationURL(baseURL, identity string) string {
	return strings.TrimRight(baseURL, "/") + "/verify/" + identity
}
