// Package keys gives the signer and verifier access to the issuer key pair.
package keys

import (
	"crypto/rsa"
	"errors"
	"os"
	"sync"

	"github.com/evidenceledger/certissuer/internal/errl"
)

// MinKeyBits is the smallest RSA modulus accepted for issuer keys
const MinKeyBits = 2048

// ErrKeyUnavailable is returned when key material is missing or unusable
var ErrKeyUnavailable = errors.New("issuer key unavailable")

// PrivateKeyProvider gives access to the issuer private key.
// Only the signer holds one.
type PrivateKeyProvider interface {
	PrivateKey() (*rsa.PrivateKey, error)
}

// PublicKeyProvider gives access to the issuer public key
type PublicKeyProvider interface {
	PublicKey() (*rsa.PublicKey, error)
}

// Provider gives access to both halves of the key pair
type Provider interface {
	PrivateKeyProvider
	PublicKeyProvider
}

// FileProvider loads PEM-encoded keys from disk.
// Keys are parsed on first use and kept for the life of the process.
// A failed load is not retried.
type FileProvider struct {
	privatePath string
	publicPath  string

	loadPrivate func() (*rsa.PrivateKey, error)
	loadPublic  func() (*rsa.PublicKey, error)
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider for a PKCS8 private key file and a
// SubjectPublicKeyInfo public key file. Either path may be empty: with no
// public path the public key is derived from the private key, and with no
// private path only PublicKey works (a verify-only deployment).
func NewFileProvider(privatePath, publicPath string) *FileProvider {
	p := &FileProvider{
		privatePath: privatePath,
		publicPath:  publicPath,
	}
	p.loadPrivate = sync.OnceValues(p.readPrivate)
	p.loadPublic = sync.OnceValues(p.readPublic)
	return p
}

// PrivateKey returns the issuer private key
func (p *FileProvider) PrivateKey() (*rsa.PrivateKey, error) {
	return p.loadPrivate()
}

// PublicKey returns the issuer public key
func (p *FileProvider) PublicKey() (*rsa.PublicKey, error) {
	return p.loadPublic()
}

func (p *FileProvider) readPrivate() (*rsa.PrivateKey, error) {
	if p.privatePath == "" {
		return nil, errl.Errorf("%w: no private key configured", ErrKeyUnavailable)
	}

	data, err := os.ReadFile(p.privatePath)
	if err != nil {
		return nil, errl.Errorf("%w: reading %s: %v", ErrKeyUnavailable, p.privatePath, err)
	}

	return ParsePrivateKeyPEM(data)
}

func (p *FileProvider) readPublic() (*rsa.PublicKey, error) {
	if p.publicPath == "" {
		priv, err := p.PrivateKey()
		if err != nil {
			return nil, err
		}
		return &priv.PublicKey, nil
	}

	data, err := os.ReadFile(p.publicPath)
	if err != nil {
		return nil, errl.Errorf("%w: reading %s: %v", ErrKeyUnavailable, p.publicPath, err)
	}

	return ParsePublicKeyPEM(data)
}

// StaticProvider serves keys already held in memory
type StaticProvider struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider wraps a private key; its public half is served too
func NewStaticProvider(key *rsa.PrivateKey) *StaticProvider {
	p := &StaticProvider{private: key}
	if key != nil {
		p.public = &key.PublicKey
	}
	return p
}

// NewStaticPublicProvider wraps a public key only
func NewStaticPublicProvider(pub *rsa.PublicKey) *StaticProvider {
	return &StaticProvider{public: pub}
}

// PrivateKey returns the wrapped private key
func (p *StaticProvider) PrivateKey() (*rsa.PrivateKey, error) {
	if p.private == nil {
		return nil, errl.Errorf("%w: no private key held", ErrKeyUnavailable)
	}
	return p.private, nil
}

// PublicKey returns the wrapped public key
func (p *StaticProvider) PublicKey() (*rsa.PublicKey, error) {
	if p.public == nil {
		return nil, errl.Errorf("%w: no public key held", ErrKeyUnavailable)
	}
	return p.public, nil
}
