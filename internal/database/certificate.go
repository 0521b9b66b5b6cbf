package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

const certificateColumns = `
	c.id, c.uuid, c.subject_id, s.first_name, s.last_name, s.external_id, s.email,
	c.degree, c.program, c.issue_date, c.issuer_name, c.signature, c.artifact,
	c.revoked, c.revoked_reason, c.revoked_at, c.created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.SignedCertificate, error) {
	var (
		c         models.SignedCertificate
		firstName string
		lastName  string
		issueDate string
		revokedAt sql.NullTime
	)

	err := row.Scan(
		&c.ID, &c.Identity, &c.SubjectID, &firstName, &lastName, &c.SubjectExternalID, &c.SubjectEmail,
		&c.CredentialTitle, &c.ProgramName, &issueDate, &c.IssuerName, &c.Signature, &c.ArtifactLocator,
		&c.Revoked, &c.RevocationReason, &revokedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	subject := models.Subject{FirstName: firstName, LastName: lastName}
	c.SubjectName = subject.FullName()

	c.IssueDate, err = time.Parse(models.DateLayout, issueDate)
	if err != nil {
		return nil, errl.Errorf("invalid stored issue date %q: %w", issueDate, err)
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}

	return &c, nil
}

// FindCertificate retrieves a certificate by its identity
func (d *Database) FindCertificate(ctx context.Context, identity string) (*models.SignedCertificate, error) {
	query := `SELECT ` + certificateColumns + `
		FROM certificates c JOIN subjects s ON s.id = c.subject_id
		WHERE c.uuid = ?
	`

	cert, err := scanCertificate(d.db.QueryRowContext(ctx, query, identity))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errl.Errorf("failed to get certificate: %w", err)
	}

	return cert, nil
}

// InsertCertificate stores a signed certificate in a single statement
func (d *Database) InsertCertificate(ctx context.Context, cert *models.SignedCertificate) error {
	query := `
		INSERT INTO certificates (
			uuid, subject_id, degree, program, issue_date, issuer_name,
			signature, artifact, revoked, revoked_reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, '', ?)
	`

	result, err := d.db.ExecContext(ctx, query,
		cert.Identity, cert.SubjectID, cert.CredentialTitle, cert.ProgramName,
		cert.IssueDate.Format(models.DateLayout), cert.IssuerName,
		cert.Signature, cert.ArtifactLocator, cert.CreatedAt,
	)
	if err != nil {
		return errl.Errorf("failed to create certificate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errl.Errorf("failed to read certificate id: %w", err)
	}
	cert.ID = id

	slog.Debug("Created certificate", "uuid", cert.Identity)
	return nil
}

// MarkRevoked flags a certificate as revoked and records the reason
func (d *Database) MarkRevoked(ctx context.Context, identity, reason string) error {
	query := `
		UPDATE certificates
		SET revoked = 1, revoked_reason = ?, revoked_at = ?
		WHERE uuid = ?
	`

	result, err := d.db.ExecContext(ctx, query, reason, time.Now().UTC(), identity)
	if err != nil {
		return errl.Errorf("failed to revoke certificate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errl.Errorf("failed to revoke certificate: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	slog.Debug("Revoked certificate", "uuid", identity)
	return nil
}

// ListCertificates retrieves all certificates, newest first
func (d *Database) ListCertificates(ctx context.Context) ([]models.SignedCertificate, error) {
	query := `SELECT ` + certificateColumns + `
		FROM certificates c JOIN subjects s ON s.id = c.subject_id
		ORDER BY c.id DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errl.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	certs := []models.SignedCertificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, errl.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, *cert)
	}
	if err := rows.Err(); err != nil {
		return nil, errl.Errorf("failed to list certificates: %w", err)
	}

	return certs, nil
}
