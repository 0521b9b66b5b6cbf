package models

// Status is the outcome of verifying a certificate by its identity.
// These four values are the complete output domain.
type Status string

const (
	StatusNotFound Status = "NOT_FOUND"
	StatusRevoked  Status = "REVOKED"
	StatusValid    Status = "VALID"
	StatusInvalid  Status = "INVALID"
)

// VerificationResult is what a third party learns when verifying a certificate
type VerificationResult struct {
	Status      Status           `json:"status"`
	Message     string           `json:"message"`
	Reason      string           `json:"reason,omitempty"`
	Certificate *VerifiedDetails `json:"certificate,omitempty"`
}

// VerifiedDetails are the facts disclosed for a VALID certificate
type VerifiedDetails struct {
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
	Degree      string `json:"degree"`
	Program     string `json:"program"`
	IssueDate   string `json:"issue_date"`
	Issuer      string `json:"issuer"`
}

// NewVerifiedDetails copies the disclosed fields out of the signed facts
func NewVerifiedDetails(f CertificateFacts) *VerifiedDetails {
	return &VerifiedDetails{
		StudentName: f.SubjectName,
		StudentID:   f.SubjectExternalID,
		Degree:      f.CredentialTitle,
		Program:     f.ProgramName,
		IssueDate:   f.IssueDate.Format(DateLayout),
		Issuer:      f.IssuerName,
	}
}
