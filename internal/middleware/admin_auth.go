package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/certissuer/internal/cache"
	"github.com/evidenceledger/certissuer/internal/jwt"
)

// LocalsAdmin is the fiber.Ctx locals key holding the authenticated admin claims
const LocalsAdmin = "admin"

// AdminAuth handles admin authentication
type AdminAuth struct {
	tokens  *jwt.Service
	revoked *cache.Cache[struct{}]
}

// NewAdminAuth creates a new admin auth middleware.
// Token IDs present in revoked are rejected (logged out tokens).
func NewAdminAuth(tokens *jwt.Service, revoked *cache.Cache[struct{}]) *AdminAuth {
	return &AdminAuth{
		tokens:  tokens,
		revoked: revoked,
	}
}

// AuthMiddleware returns the admin authentication middleware
func (a *AdminAuth) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			c.Set("WWW-Authenticate", `Bearer realm="admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin authentication required",
			})
		}

		claims, err := a.tokens.ParseAdminToken(token)
		if err != nil {
			slog.Debug("Rejected admin token", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin credentials",
			})
		}

		if a.revoked.Has(claims.ID) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		c.Locals(LocalsAdmin, claims)
		return c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c *fiber.Ctx) (string, bool) {
	auth := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
