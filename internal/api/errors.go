package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/certissuer/internal/canonical"
	"github.com/evidenceledger/certissuer/internal/lifecycle"
	"github.com/evidenceledger/certissuer/internal/models"
)

// errorHandler renders every unhandled error as a JSON body
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("Unhandled request error", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// sendError maps domain errors to a status code. Only client errors expose their message.
func sendError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidRequest), errors.Is(err, canonical.ErrIncompleteFacts):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	default:
		slog.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

// verificationStatusCode is the HTTP status reported with each verification outcome
func verificationStatusCode(status models.Status) int {
	switch status {
	case models.StatusNotFound:
		return fiber.StatusNotFound
	case models.StatusInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusOK
	}
}
