package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

// IssueRequest carries the subject and program details of a new certificate
type IssueRequest struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Degree    string `json:"degree"`
	Program   string `json:"program"`
	IssueDate string `json:"issue_date"`
}

// normalize trims free-text fields and checks that every required one is present
func (r *IssueRequest) normalize() (time.Time, error) {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Degree = strings.TrimSpace(r.Degree)
	r.Program = strings.TrimSpace(r.Program)
	r.IssueDate = strings.TrimSpace(r.IssueDate)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"student_id", r.StudentID},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"degree", r.Degree},
		{"program", r.Program},
		{"issue_date", r.IssueDate},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return time.Time{}, errl.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	date, err := time.Parse(models.DateLayout, r.IssueDate)
	if err != nil {
		return time.Time{}, errl.Errorf("%w: issue_date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	return date, nil
}

// Issue creates, signs and stores a new certificate.
// The certificate is written once, with its signature, so no unsigned
// certificate is ever visible to verification.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.SignedCertificate, error) {
	issueDate, err := req.normalize()
	if err != nil {
		return nil, err
	}

	subject, err := s.ensureSubject(ctx, req)
	if err != nil {
		return nil, err
	}

	identity, err := s.ids.ID()
	if err != nil {
		return nil, err
	}

	facts := models.CertificateFacts{
		Identity:          identity,
		SubjectName:       subject.FullName(),
		SubjectExternalID: subject.ExternalID,
		CredentialTitle:   req.Degree,
		ProgramName:       req.Program,
		IssueDate:         issueDate,
		IssuerName:        s.cfg.IssuerName,
	}

	signature, err := s.signer.Sign(facts)
	if err != nil {
		slog.Error("Certificate signing failed", "student_id", subject.ExternalID, "error", err)
		return nil, err
	}

	cert := &models.SignedCertificate{
		Identity:          facts.Identity,
		SubjectID:         subject.ID,
		SubjectName:       facts.SubjectName,
		SubjectExternalID: facts.SubjectExternalID,
		SubjectEmail:      subject.Email,
		CredentialTitle:   facts.CredentialTitle,
		ProgramName:       facts.ProgramName,
		IssueDate:         facts.IssueDate,
		IssuerName:        facts.IssuerName,
		Signature:         signature,
		CreatedAt:         s.now().UTC(),
	}

	if s.renderer != nil {
		locator, err := s.renderer.Render(ctx, cert)
		if err != nil {
			slog.Warn("Certificate artifact not rendered", "uuid", cert.Identity, "error", err)
		} else {
			cert.ArtifactLocator = locator
		}
	}

	if err := s.store.InsertCertificate(ctx, cert); err != nil {
		if cert.ArtifactLocator != "" {
			if derr := s.renderer.Discard(ctx, cert.ArtifactLocator); derr != nil {
				slog.Warn("Orphan certificate artifact not removed", "uuid", cert.Identity, "locator", cert.ArtifactLocator, "error", derr)
			}
		}
		return nil, errl.Wrap(err, "failed to store certificate")
	}

	slog.Info("Certificate issued", "uuid", cert.Identity, "student_id", cert.SubjectExternalID, "degree", cert.CredentialTitle)

	if s.notifier != nil && cert.SubjectEmail != "" {
		if err := s.notifier.NotifyIssued(ctx, cert, VerificationURL(s.cfg.BaseURL, cert.Identity)); err != nil {
			slog.Warn("Issuance notification not sent", "uuid", cert.Identity, "error", err)
		}
	}

	return cert, nil
}

// ensureSubject returns the stored subject for req.StudentID, creating it if
// needed. A concurrent creation of the same subject resolves to the record
// that won the insert.
func (s *Service) ensureSubject(ctx context.Context, req IssueRequest) (*models.Subject, error) {
	subject, err := s.store.FindSubject(ctx, req.StudentID)
	if err != nil {
		return nil, errl.Errorf("failed to look up subject: %w", err)
	}
	if subject != nil {
		return subject, nil
	}

	subject = &models.Subject{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ExternalID: req.StudentID,
		Email:      req.Email,
		CreatedAt:  s.now().UTC(),
	}

	err = s.store.InsertSubject(ctx, subject)
	if err == nil {
		slog.Info("Subject created", "student_id", subject.ExternalID)
		return subject, nil
	}
	if !errors.Is(err, models.ErrSubjectExists) {
		return nil, errl.Errorf("failed to create subject: %w", err)
	}

	existing, err := s.store.FindSubject(ctx, req.StudentID)
	if err != nil {
		return nil, errl.Errorf("failed to look up subject: %w", err)
	}
	if existing == nil {
		return nil, errl.Errorf("subject %s reported as existing but not found", req.StudentID)
	}
	return existing, nil
}
