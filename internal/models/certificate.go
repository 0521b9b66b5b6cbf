package models

import (
	"time"
)

// DateLayout is the single calendar format used for issue dates.
const DateLayout = "2006-01-02"

// CertificateFacts is the exact set of fields covered by a certificate signature.
// Adding or removing a field here changes the canonical payload and invalidates
// every certificate issued before the change.
type CertificateFacts struct {
	Identity          string    `json:"uuid"`
	SubjectName       string    `json:"student_name"`
	SubjectExternalID string    `json:"student_id"`
	CredentialTitle   string    `json:"degree"`
	ProgramName       string    `json:"program"`
	IssueDate         time.Time `json:"issue_date"`
	IssuerName        string    `json:"issuer"`
}

// SignedCertificate is a certificate as kept by the record store
type SignedCertificate struct {
	ID                int64      `json:"id"`
	Identity          string     `json:"uuid"`
	SubjectID         int64      `json:"-"`
	SubjectName       string     `json:"student_name"`
	SubjectExternalID string     `json:"student_id"`
	SubjectEmail      string     `json:"student_email,omitempty"`
	CredentialTitle   string     `json:"degree"`
	ProgramName       string     `json:"program"`
	IssueDate         time.Time  `json:"issue_date"`
	IssuerName        string     `json:"issuer"`
	Signature         string     `json:"signature"`
	ArtifactLocator   string     `json:"-"`
	Revoked           bool       `json:"revoked"`
	RevocationReason  string     `json:"revoked_reason,omitempty"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Facts extracts the signed subset of the stored certificate.
// Fields outside CertificateFacts never influence signature validity.
func (c *SignedCertificate) Facts() CertificateFacts {
	return CertificateFacts{
		Identity:          c.Identity,
		SubjectName:       c.SubjectName,
		SubjectExternalID: c.SubjectExternalID,
		CredentialTitle:   c.CredentialTitle,
		ProgramName:       c.ProgramName,
		IssueDate:         c.IssueDate,
		IssuerName:        c.IssuerName,
	}
}

// Subject is the holder of one or more certificates (a student)
type Subject struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	ExternalID string    `json:"student_id"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName is the name printed on, and signed into, certificates
func (s *Subject) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Admin is an operator allowed to issue and revoke certificates
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}
