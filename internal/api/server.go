package api

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/evidenceledger/certissuer/internal/cache"
	"github.com/evidenceledger/certissuer/internal/certconfig"
	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/html"
	"github.com/evidenceledger/certissuer/internal/jwt"
	"github.com/evidenceledger/certissuer/internal/lifecycle"
	"github.com/evidenceledger/certissuer/internal/middleware"
)

//go:embed views/*
var viewsfs embed.FS

const (
	// maxLoginAttempts is the number of failed logins tolerated per username
	maxLoginAttempts = 5
	// loginLockout is how long a username stays locked after too many failures
	loginLockout = 15 * time.Minute
)

// AdminStore checks administrator credentials
type AdminStore interface {
	ValidateAdmin(ctx context.Context, username, password string) (bool, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server
type Deps struct {
	Certificates *lifecycle.Service
	Admins       AdminStore
	Health       Pinger
	Tokens       *jwt.Service
	// Revoked holds the IDs of logged out admin tokens
	Revoked *cache.Cache[struct{}]
}

// Server is the HTTP surface of the certificate issuer
type Server struct {
	cfg       certconfig.Config
	app       *fiber.App
	certs     *lifecycle.Service
	admins    AdminStore
	health    Pinger
	tokens    *jwt.Service
	revoked   *cache.Cache[struct{}]
	attempts  *cache.Cache[int]
	adminAuth *middleware.AdminAuth
	html      *html.RendererFiber
}

// New creates the HTTP server and registers its routes
func New(cfg certconfig.Config, deps Deps) (*Server, error) {
	views, err := fs.Sub(viewsfs, "views")
	if err != nil {
		return nil, errl.Error(err)
	}

	extDir := ""
	if cfg.Development {
		extDir = "internal/api/views"
	}

	htmlrender, err := html.NewRendererFiber(views, extDir)
	if err != nil {
		return nil, errl.Errorf("failed to initialize template engine: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Certificate Issuer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	s := &Server{
		cfg:       cfg,
		app:       app,
		certs:     deps.Certificates,
		admins:    deps.Admins,
		health:    deps.Health,
		tokens:    deps.Tokens,
		revoked:   deps.Revoked,
		attempts:  cache.New[int](loginLockout),
		adminAuth: middleware.NewAdminAuth(deps.Tokens, deps.Revoked),
		html:      htmlrender,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes sets up all the server routes
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	// Issuer key publication
	s.app.Get("/.well-known/jwks.json", s.handleJWKS)
	s.app.Get("/api/issuer", s.handleIssuer)

	// Public verification page
	s.app.Get("/verify/:uuid", s.handleVerifyPage)

	requireAdmin := s.adminAuth.AuthMiddleware()

	auth := s.app.Group("/api/auth")
	auth.Post("/login", s.handleLogin)
	auth.Post("/logout", requireAdmin, s.handleLogout)
	auth.Get("/me", requireAdmin, s.handleMe)

	certs := s.app.Group("/api/certificates")

	// Public
	certs.Get("/:uuid/verify", s.handleVerify)
	certs.Get("/:uuid/qr", s.handleQRCode)

	// Admin routes (protected)
	certs.Post("/", requireAdmin, s.handleIssue)
	certs.Get("/", requireAdmin, s.handleList)
	certs.Get("/:uuid", requireAdmin, s.handleGet)
	certs.Post("/:uuid/revoke", requireAdmin, s.handleRevoke)
}

// App exposes the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health.Ping(c.UserContext()); err != nil {
			slog.Error("Health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
	}
	return c.JSON(fiber.Map{"status": "healthy", "hostname": c.Hostname()})
}

// Start runs the server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort("0.0.0.0", s.cfg.Port)
	slog.Info("Starting certificate issuer", "addr", addr, "url", s.cfg.BaseURL)

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(addr); err != nil {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.app.Shutdown()
	}
}
