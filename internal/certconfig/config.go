package certconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the runtime configuration of the certificate issuer
type Config struct {
	Development bool

	// HTTP server
	Port           string
	BaseURL        string
	AllowedOrigins string

	// Storage
	DatabasePath string
	ArtifactDir  string

	// Signing keys (PEM)
	PrivateKeyPath string
	PublicKeyPath  string

	// Issuer
	IssuerName string

	// Administration
	AdminPassword string
	JWTSecret     string
	TokenExpiry   time.Duration

	// Outgoing e-mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// Defaults used when neither a flag nor an environment variable is set
const (
	DefaultPort           = "8090"
	DefaultDatabasePath   = "./data/certissuer.db"
	DefaultArtifactDir    = "./data/artifacts"
	DefaultPrivateKeyPath = "keys/private_key.pem"
	DefaultPublicKeyPath  = "keys/public_key.pem"
	DefaultIssuerName     = "Puntland State University"
	DefaultTokenExpiry    = time.Hour
)

// Validate checks that the configuration can start a server
func (c *Config) Validate() error {
	var errs []error

	if c.AdminPassword == "" {
		errs = append(errs, errors.New("admin password is required"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT secret must be at least 16 characters"))
	}
	if strings.TrimSpace(c.IssuerName) == "" {
		errs = append(errs, errors.New("issuer name is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.PrivateKeyPath == "" {
		errs = append(errs, errors.New("private key path is required"))
	}

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid base URL %q", c.BaseURL))
	}

	return errors.Join(errs...)
}

// Origins returns the CORS allow-list, "*" when none is configured
func (c *Config) Origins() string {
	origins := strings.TrimSpace(c.AllowedOrigins)
	if origins == "" {
		return "*"
	}
	return origins
}
