package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/evidenceledger/certissuer/internal/api"
	"github.com/evidenceledger/certissuer/internal/artifact"
	"github.com/evidenceledger/certissuer/internal/cache"
	"github.com/evidenceledger/certissuer/internal/certconfig"
	"github.com/evidenceledger/certissuer/internal/database"
	"github.com/evidenceledger/certissuer/internal/email"
	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/jwt"
	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/lifecycle"
	"github.com/evidenceledger/certissuer/internal/signing"
)

// AdminUsername is the administrator created on first start
const AdminUsername = "admin"

// Server wires the storage, signing and HTTP layers of the certificate issuer
type Server struct {
	cfg certconfig.Config
	db  *database.Database
	api *api.Server
}

// New creates a new server instance. It opens the database, makes sure the
// administrator exists and checks that the signing key can be loaded.
func New(ctx context.Context, cfg certconfig.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errl.Errorf("invalid configuration: %w", err)
	}

	// The key pair is read and checked once, then served from memory
	files := keys.NewFileProvider(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	priv, err := files.PrivateKey()
	if err != nil {
		return nil, err
	}
	pub, err := files.PublicKey()
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, errl.Errorf("%w: public key does not match private key", keys.ErrKeyUnavailable)
	}
	provider := keys.NewStaticProvider(priv)
	kid, err := keys.Fingerprint(pub)
	if err != nil {
		return nil, err
	}

	db := database.New(cfg.DatabasePath)
	if err := db.Initialize(); err != nil {
		return nil, errl.Wrap(err, "failed to initialize database")
	}

	if err := db.EnsureAdmin(ctx, AdminUsername, cfg.AdminPassword); err != nil {
		db.Close()
		return nil, err
	}

	mailer := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	})

	certs := lifecycle.New(
		lifecycle.Config{IssuerName: cfg.IssuerName, BaseURL: cfg.BaseURL},
		signing.NewSigner(provider),
		signing.NewVerifier(provider),
		db,
		lifecycle.WithRenderer(artifact.NewQRRenderer(cfg.ArtifactDir, cfg.BaseURL)),
		lifecycle.WithNotifier(mailer),
	)

	tokens, err := jwt.NewService(cfg.BaseURL, []byte(cfg.JWTSecret), cfg.TokenExpiry, provider)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Logged out admin tokens, remembered until they expire on their own
	revoked := cache.New[struct{}](max(cfg.TokenExpiry, time.Minute))

	apiServer, err := api.New(cfg, api.Deps{
		Certificates: certs,
		Admins:       db,
		Health:       db,
		Tokens:       tokens,
		Revoked:      revoked,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("Certificate issuer ready",
		"issuer", cfg.IssuerName,
		"url", cfg.BaseURL,
		"database", cfg.DatabasePath,
		"key_id", kid,
		"development", cfg.Development)

	return &Server{
		cfg: cfg,
		db:  db,
		api: apiServer,
	}, nil
}

// Start serves requests until ctx is cancelled, then closes the database
func (s *Server) Start(ctx context.Context) error {
	defer func() {
		if err := s.db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if err := s.api.Start(ctx); err != nil {
		return errl.Wrap(err, "certificate issuer server failed")
	}

	slog.Info("Server stopped")
	return nil
}
