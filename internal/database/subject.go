package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

// FindSubject retrieves a subject by its external (student) identifier
func (d *Database) FindSubject(ctx context.Context, externalID string) (*models.Subject, error) {
	query := `
		SELECT id, external_id, first_name, last_name, email, created_at
		FROM subjects
		WHERE external_id = ?
	`

	var s models.Subject
	err := d.db.QueryRowContext(ctx, query, externalID).Scan(
		&s.ID, &s.ExternalID, &s.FirstName, &s.LastName, &s.Email, &s.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errl.Errorf("failed to get subject: %w", err)
	}

	return &s, nil
}

// InsertSubject creates a subject. The external identifier is unique: a
// second insert for the same identifier fails with models.ErrSubjectExists.
func (d *Database) InsertSubject(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (external_id, first_name, last_name, email, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := d.db.ExecContext(ctx, query,
		subject.ExternalID, subject.FirstName, subject.LastName, subject.Email, subject.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrSubjectExists
		}
		return errl.Errorf("failed to create subject: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errl.Errorf("failed to read subject id: %w", err)
	}
	subject.ID = id

	slog.Debug("Created subject", "student_id", subject.ExternalID)
	return nil
}
