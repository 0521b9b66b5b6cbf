package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

// Config holds the SMTP settings. Without credentials messages are only logged.
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Service represents an email service
type Service struct {
	cfg       Config
	templates *template.Template
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// CertificateEmailData represents the data passed to the certificate email template
type CertificateEmailData struct {
	StudentName     string
	Degree          string
	Program         string
	IssueDate       string
	IssuerName      string
	CertificateID   string
	VerificationURL string
}

// NewService creates a new email service
func NewService(cfg Config) *Service {
	tmpl := template.Must(template.New("certificate").Parse(certificateEmailTemplate))

	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = "noreply@certissuer.local"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Certificate Issuer"
	}

	return &Service{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
	}
}

// NotifyIssued tells the certificate holder where the certificate can be verified
func (s *Service) NotifyIssued(ctx context.Context, cert *models.SignedCertificate, verificationURL string) error {
	if err := ctx.Err(); err != nil {
		return errl.Error(err)
	}

	data := CertificateEmailData{
		StudentName:     cert.SubjectName,
		Degree:          cert.CredentialTitle,
		Program:         cert.ProgramName,
		IssueDate:       cert.IssueDate.Format(models.DateLayout),
		IssuerName:      cert.IssuerName,
		CertificateID:   cert.Identity,
		VerificationURL: verificationURL,
	}

	return s.SendCertificateIssued(cert.SubjectEmail, data)
}

// SendCertificateIssued sends the certificate notification to a student
func (s *Service) SendCertificateIssued(toEmail string, data CertificateEmailData) error {
	if err := s.ValidateEmail(toEmail); err != nil {
		return errl.Errorf("invalid email: %w", err)
	}

	var body bytes.Buffer
	if err := s.templates.Execute(&body, data); err != nil {
		return errl.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Your %s certificate from %s", data.Degree, data.IssuerName)
	return s.sendEmail(toEmail, subject, body.String())
}

// sendEmail sends an email using SMTP
func (s *Service) sendEmail(toEmail string, subject string, body string) error {
	// For development/testing, if no SMTP credentials are provided, just log the email
	if s.cfg.Username == "" || s.cfg.Password == "" {
		slog.Info("Email would be sent (development mode)",
			"to", toEmail,
			"subject", subject,
			"body_length", len(body))
		return nil
	}

	var message strings.Builder
	fmt.Fprintf(&message, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(&message, "To: %s\r\n", toEmail)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port

	if err := s.send(addr, auth, s.cfg.FromEmail, []string{toEmail}, []byte(message.String())); err != nil {
		return errl.Errorf("failed to send email: %w", err)
	}

	slog.Info("Certificate email sent", "to", toEmail)
	return nil
}

// ValidateEmail validates email format
func (s *Service) ValidateEmail(email string) error {
	if email == "" {
		return errl.Errorf("email is required")
	}

	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return errl.Errorf("invalid email format")
	}

	if !strings.Contains(domain, ".") {
		return errl.Errorf("invalid email format")
	}

	return nil
}

const certificateEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your certificate - {{.IssuerName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa; }
        .container { background-color: white; border-radius: 8px; padding: 30px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; margin-bottom: 30px; }
        .header h1 { color: #2c3e50; margin: 0; font-size: 24px; }
        .details { background-color: #f8f9fa; border: 2px solid #dee2e6; border-radius: 8px; padding: 20px; margin: 20px 0; }
        .details dt { font-weight: bold; color: #495057; }
        .details dd { margin: 0 0 10px 0; }
        .verify { text-align: center; margin: 20px 0; }
        .verify a { background-color: #2196f3; color: white; padding: 10px 20px; border-radius: 4px; text-decoration: none; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #dee2e6; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Congratulations, {{.StudentName}}</h1>
            <p>{{.IssuerName}} has issued you a digitally signed certificate.</p>
        </div>

        <dl class="details">
            <dt>Degree</dt><dd>{{.Degree}}</dd>
            <dt>Program</dt><dd>{{.Program}}</dd>
            <dt>Issue date</dt><dd>{{.IssueDate}}</dd>
            <dt>Certificate ID</dt><dd>{{.CertificateID}}</dd>
        </dl>

        <p>Anyone can confirm that this certificate is authentic and has not been revoked:</p>
        <div class="verify">
            <a href="{{.VerificationURL}}">Verify certificate</a>
        </div>

        <div class="footer">
            <p>This is an automated message from {{.IssuerName}}. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>`
