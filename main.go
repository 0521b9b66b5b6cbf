package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evidenceledger/certissuer/internal/certconfig"
	"github.com/evidenceledger/certissuer/internal/server"
)

func main() {
	var cfg certconfig.Config

	// The URL and port for the issuer, used in verification links and QR codes
	flag.StringVar(&cfg.Port, "port", "", "Port for the HTTP server")
	flag.StringVar(&cfg.BaseURL, "base-url", "", "Public URL of the issuer")
	flag.StringVar(&cfg.AllowedOrigins, "allowed-origins", "", "Comma separated CORS origins for the admin frontend")

	// Storage
	flag.StringVar(&cfg.DatabasePath, "db", "", "Path to the SQLite database")
	flag.StringVar(&cfg.ArtifactDir, "artifact-dir", "", "Directory for rendered certificate artifacts")

	// Signing keys
	flag.StringVar(&cfg.PrivateKeyPath, "private-key", "", "PEM file with the issuer private key")
	flag.StringVar(&cfg.PublicKeyPath, "public-key", "", "PEM file with the issuer public key")
	flag.StringVar(&cfg.IssuerName, "issuer-name", "", "Name of the issuing institution")

	// Administration
	flag.StringVar(&cfg.AdminPassword, "admin-password", "", "Password of the admin account")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Secret used to sign admin tokens")
	flag.DurationVar(&cfg.TokenExpiry, "token-expiry", certconfig.DefaultTokenExpiry, "Lifetime of admin tokens")

	flag.BoolVar(&cfg.Development, "dev", false, "Development mode: debug logs and templates read from disk")

	flag.Parse()

	// Initialize logging
	level := slog.LevelInfo
	if cfg.Development || os.Getenv("CERTISSUER_DEV") == "true" {
		cfg.Development = true
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Command line has priority over the environment, then defaults apply
	setDefault(&cfg.Port, "CERTISSUER_PORT", certconfig.DefaultPort)
	setDefault(&cfg.DatabasePath, "CERTISSUER_DB", certconfig.DefaultDatabasePath)
	setDefault(&cfg.ArtifactDir, "CERTISSUER_ARTIFACT_DIR", certconfig.DefaultArtifactDir)
	setDefault(&cfg.PrivateKeyPath, "CERTISSUER_PRIVATE_KEY", certconfig.DefaultPrivateKeyPath)
	setDefault(&cfg.PublicKeyPath, "CERTISSUER_PUBLIC_KEY", certconfig.DefaultPublicKeyPath)
	setDefault(&cfg.IssuerName, "CERTISSUER_ISSUER_NAME", certconfig.DefaultIssuerName)
	setDefault(&cfg.AllowedOrigins, "CERTISSUER_ALLOWED_ORIGINS", "")
	setDefault(&cfg.BaseURL, "CERTISSUER_URL", "http://localhost:"+cfg.Port)

	// Secrets are never defaulted
	setDefault(&cfg.AdminPassword, "CERTISSUER_ADMIN_PASSWORD", "")
	setDefault(&cfg.JWTSecret, "CERTISSUER_JWT_SECRET", "")

	if cfg.AdminPassword == "" {
		slog.Error("Admin password required. Set CERTISSUER_ADMIN_PASSWORD environment variable")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT secret required. Set CERTISSUER_JWT_SECRET environment variable")
		os.Exit(1)
	}

	// Outgoing e-mail is configured only through the environment
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = os.Getenv("SMTP_PORT")
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.FromEmail = os.Getenv("FROM_EMAIL")
	cfg.FromName = os.Getenv("FROM_NAME")

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	srv, err := server.New(initCtx, cfg)
	initCancel()
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// setDefault fills an empty setting from the environment, or from def
func setDefault(value *string, env, def string) {
	if *value != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*value = v
		return
	}
	*value = def
}
