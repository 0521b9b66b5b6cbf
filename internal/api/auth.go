package api

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/certissuer/internal/jwt"
	"github.com/evidenceledger/certissuer/internal/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges administrator credentials for a bearer token
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password required"})
	}

	// Reserve the attempt before the password is checked
	attempt := s.attempts.Update(req.Username, func(n int, _ bool) int { return n + 1 }, 0)
	if attempt > maxLoginAttempts {
		slog.Warn("Admin login locked", "username", req.Username)
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many failed login attempts"})
	}

	ok, err := s.admins.ValidateAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		slog.Error("Admin validation failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during login"})
	}
	if !ok {
		slog.Info("Admin login failed", "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	s.attempts.Delete(req.Username)

	token, expiresAt, err := s.tokens.GenerateAdminToken(req.Username)
	if err != nil {
		slog.Error("Failed to generate admin token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during login"})
	}

	slog.Info("Admin logged in", "username", req.Username)
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt.Unix(),
		"admin":        fiber.Map{"username": req.Username},
	})
}

// handleLogout denies the presented token until it expires
func (s *Server) handleLogout(c *fiber.Ctx) error {
	claims := c.Locals(middleware.LocalsAdmin).(*jwt.AdminClaims)
	s.revoked.SetUntil(claims.ID, struct{}{}, claims.ExpiresAt.Time)

	slog.Info("Admin logged out", "username", claims.Subject)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	claims := c.Locals(middleware.LocalsAdmin).(*jwt.AdminClaims)
	return c.JSON(fiber.Map{
		"username":   claims.Subject,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt.Unix(),
	})
}
