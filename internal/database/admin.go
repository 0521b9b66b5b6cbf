package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// GetAdmin retrieves an administrator by username
func (d *Database) GetAdmin(ctx context.Context, username string) (*models.Admin, error) {
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`

	var a models.Admin
	err := d.db.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errl.Errorf("failed to get admin: %w", err)
	}

	return &a, nil
}

// EnsureAdmin creates the administrator if it does not exist yet.
// An existing administrator keeps its password.
func (d *Database) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := d.GetAdmin(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Debug("Admin already exists, skipping creation", "username", username)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errl.Errorf("failed to hash admin password: %w", err)
	}

	query := `INSERT INTO admins (username, password_hash) VALUES (?, ?)`
	if _, err := d.db.ExecContext(ctx, query, username, string(hashed)); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return errl.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Created admin", "username", username)
	return nil
}

// ValidateAdmin checks a password against the stored hash
func (d *Database) ValidateAdmin(ctx context.Context, username, password string) (bool, error) {
	admin, err := d.GetAdmin(ctx, username)
	if err != nil {
		return false, err
	}
	if admin == nil {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	return err == nil, nil
}
