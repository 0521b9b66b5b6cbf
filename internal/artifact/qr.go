// Package artifact renders the human-facing artifacts of a certificate.
package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/lifecycle"
	"github.com/evidenceledger/certissuer/internal/models"
)

// QRSize is the edge length in pixels of rendered QR codes
const QRSize = 256

// QRRenderer writes a PNG QR code pointing at the public verification page of a certificate
type QRRenderer struct {
	dir     string
	baseURL string
}

// NewQRRenderer creates a renderer writing into dir
func NewQRRenderer(dir, baseURL string) *QRRenderer {
	return &QRRenderer{dir: dir, baseURL: baseURL}
}

// Render writes <dir>/<uuid>.png and returns its path
func (r *QRRenderer) Render(ctx context.Context, cert *models.SignedCertificate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errl.Error(err)
	}
	if cert.Identity == "" {
		return "", errl.Errorf("certificate has no identity")
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", errl.Errorf("failed to create artifact directory: %w", err)
	}

	path := r.Path(cert.Identity)
	url := lifecycle.VerificationURL(r.baseURL, cert.Identity)
	if err := qrcode.WriteFile(url, qrcode.Medium, QRSize, path); err != nil {
		return "", errl.Errorf("failed to write QR code: %w", err)
	}

	return path, nil
}

// Discard removes the artifact at locator. A missing file is not an error.
func (r *QRRenderer) Discard(ctx context.Context, locator string) error {
	if err := os.Remove(locator); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errl.Wrap(err, "failed to remove QR code")
	}
	return nil
}

// Path returns where the QR code of the given certificate lives
func (r *QRRenderer) Path(identity string) string {
	return filepath.Join(r.dir, filepath.Base(identity)+".png")
}
