package api

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// handleVerifyPage renders the human-readable verification result
func (s *Server) handleVerifyPage(c *fiber.Ctx) error {
	identity := c.Params("uuid")
	result := s.certs.Verify(c.UserContext(), identity)

	return s.html.Render(c, verificationStatusCode(result.Status), "verify", fiber.Map{
		"uuid":   identity,
		"issuer": s.cfg.IssuerName,
		"result": result,
		"qrURL":  "/api/certificates/" + identity + "/qr",
		"apiURL": "/api/certificates/" + identity + "/verify",
	})
}

// handleIssuer publishes the issuer name and the key third parties verify signatures with
func (s *Server) handleIssuer(c *fiber.Ctx) error {
	pem, err := s.tokens.GetPublicKey()
	if err != nil {
		slog.Error("Issuer public key unavailable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Issuer key unavailable"})
	}

	return c.JSON(fiber.Map{
		"name":       s.cfg.IssuerName,
		"public_key": pem,
		"algorithm":  "RSASSA-PSS-SHA256",
		"jwks_uri":   strings.TrimRight(s.cfg.BaseURL, "/") + "/.well-known/jwks.json",
	})
}

// handleJWKS handles the JSON Web Key Set endpoint
func (s *Server) handleJWKS(c *fiber.Ctx) error {
	jwks, err := s.tokens.GetJWKS()
	if err != nil {
		slog.Error("Failed to build JWKS", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Issuer key unavailable"})
	}
	return c.JSON(jwks)
}
