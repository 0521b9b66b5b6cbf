package api

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"

	"github.com/evidenceledger/certissuer/internal/artifact"
	"github.com/evidenceledger/certissuer/internal/lifecycle"
	"github.com/evidenceledger/certissuer/internal/models"
)

type certificateSummary struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	StudentName string    `json:"student_name"`
	StudentID   string    `json:"student_id"`
	Degree      string    `json:"degree"`
	Program     string    `json:"program"`
	IssueDate   string    `json:"issue_date"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

type studentView struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Email     string `json:"email,omitempty"`
}

type certificateDetails struct {
	ID              int64       `json:"id"`
	UUID            string      `json:"uuid"`
	Student         studentView `json:"student"`
	Degree          string      `json:"degree"`
	Program         string      `json:"program"`
	IssueDate       string      `json:"issue_date"`
	Issuer          string      `json:"issuer"`
	Signature       string      `json:"signature"`
	Revoked         bool        `json:"revoked"`
	RevokedReason   string      `json:"revoked_reason,omitempty"`
	RevokedAt       *time.Time  `json:"revoked_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	VerificationURL string      `json:"verification_url"`
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func newCertificateSummary(cert *models.SignedCertificate) certificateSummary {
	return certificateSummary{
		ID:          cert.ID,
		UUID:        cert.Identity,
		StudentName: cert.SubjectName,
		StudentID:   cert.SubjectExternalID,
		Degree:      cert.CredentialTitle,
		Program:     cert.ProgramName,
		IssueDate:   cert.IssueDate.Format(models.DateLayout),
		Revoked:     cert.Revoked,
		CreatedAt:   cert.CreatedAt,
	}
}

func (s *Server) newCertificateDetails(cert *models.SignedCertificate) certificateDetails {
	return certificateDetails{
		ID:   cert.ID,
		UUID: cert.Identity,
		Student: studentView{
			Name:      cert.SubjectName,
			StudentID: cert.SubjectExternalID,
			Email:     cert.SubjectEmail,
		},
		Degree:          cert.CredentialTitle,
		Program:         cert.ProgramName,
		IssueDate:       cert.IssueDate.Format(models.DateLayout),
		Issuer:          cert.IssuerName,
		Signature:       cert.Signature,
		Revoked:         cert.Revoked,
		RevokedReason:   cert.RevocationReason,
		RevokedAt:       cert.RevokedAt,
		CreatedAt:       cert.CreatedAt,
		VerificationURL: lifecycle.VerificationURL(s.cfg.BaseURL, cert.Identity),
	}
}

// handleIssue issues and signs a new certificate
func (s *Server) handleIssue(c *fiber.Ctx) error {
	var req lifecycle.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cert, err := s.certs.Issue(c.UserContext(), req)
	if err != nil {
		return sendError(c, err, "Failed to issue certificate")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":               cert.ID,
		"uuid":             cert.Identity,
		"message":          "Certificate issued successfully",
		"verification_url": lifecycle.VerificationURL(s.cfg.BaseURL, cert.Identity),
	})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	certs, err := s.certs.List(c.UserContext())
	if err != nil {
		return sendError(c, err, "Failed to list certificates")
	}

	result := make([]certificateSummary, 0, len(certs))
	for i := range certs {
		result = append(result, newCertificateSummary(&certs[i]))
	}
	return c.JSON(result)
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	cert, err := s.certs.Get(c.UserContext(), c.Params("uuid"))
	if err != nil {
		return sendError(c, err, "Failed to retrieve certificate")
	}
	return c.JSON(s.newCertificateDetails(cert))
}

// handleRevoke revokes a certificate. The request body is optional.
func (s *Server) handleRevoke(c *fiber.Ctx) error {
	var req revokeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	if err := s.certs.Revoke(c.UserContext(), c.Params("uuid"), req.Reason); err != nil {
		return sendError(c, err, "Failed to revoke certificate")
	}

	return c.JSON(fiber.Map{"message": "Certificate revoked successfully"})
}

// handleVerify is the public, machine-readable verification endpoint
func (s *Server) handleVerify(c *fiber.Ctx) error {
	result := s.certs.Verify(c.UserContext(), c.Params("uuid"))
	return c.Status(verificationStatusCode(result.Status)).JSON(result)
}

// handleQRCode serves the QR code pointing at the verification page of a certificate.
// When the stored artifact is missing the code is rendered on the fly.
func (s *Server) handleQRCode(c *fiber.Ctx) error {
	cert, err := s.certs.Get(c.UserContext(), c.Params("uuid"))
	if err != nil {
		return sendError(c, err, "Failed to retrieve certificate")
	}

	if cert.ArtifactLocator != "" {
		if _, err := os.Stat(cert.ArtifactLocator); err == nil {
			return c.SendFile(cert.ArtifactLocator)
		}
		slog.Warn("Certificate artifact missing", "uuid", cert.Identity, "path", cert.ArtifactLocator)
	}

	png, err := qrcode.Encode(lifecycle.VerificationURL(s.cfg.BaseURL, cert.Identity), qrcode.Medium, artifact.QRSize)
	if err != nil {
		return sendError(c, err, "Failed to render QR code")
	}

	c.Type("png")
	return c.Send(png)
}
