package commands

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

type Globals struct {
	Debug   bool
	Version string
	Out     io.Writer
	In      io.Reader
}

// factsFile is the JSON form of certificate facts, using the payload field names
type factsFile struct {
	UUID        string `json:"uuid"`
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
	Degree      string `json:"degree"`
	Program     string `json:"program"`
	IssueDate   string `json:"issue_date"`
	Issuer      string `json:"issuer"`
}

// readFacts loads facts from path, or from in when path is "-"
func readFacts(path string, in io.Reader) (models.CertificateFacts, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.CertificateFacts{}, errl.Errorf("failed to read facts: %w", err)
	}

	var f factsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return models.CertificateFacts{}, errl.Errorf("failed to parse facts: %w", err)
	}

	var issueDate time.Time
	if f.IssueDate != "" {
		issueDate, err = time.Parse(models.DateLayout, f.IssueDate)
		if err != nil {
			return models.CertificateFacts{}, errl.Errorf("issue_date must be YYYY-MM-DD: %w", err)
		}
	}

	return models.CertificateFacts{
		Identity:          f.UUID,
		SubjectName:       f.StudentName,
		SubjectExternalID: f.StudentID,
		CredentialTitle:   f.Degree,
		ProgramName:       f.Program,
		IssueDate:         issueDate,
		IssuerName:        f.Issuer,
	}, nil
}
