package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/evidenceledger/certissuer/internal/errl"
)

// File names used by WriteKeyPair
const (
	PrivateKeyFile = "private_key.pem"
	PublicKeyFile  = "public_key.pem"
)

// GenerateRSAKey creates a new issuer key
func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	if bits < MinKeyBits {
		return nil, errl.Errorf("key size %d is below the minimum of %d bits", bits, MinKeyBits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errl.Errorf("failed to generate RSA key: %w", err)
	}
	return key, nil
}

// EncodePrivateKeyPEM serializes key as an unencrypted PKCS8 "PRIVATE KEY" block
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errl.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM serializes pub as a SubjectPublicKeyInfo "PUBLIC KEY" block
func EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, errl.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ParsePrivateKeyPEM decodes a PKCS8 (or legacy PKCS1) RSA private key
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errl.Errorf("%w: failed to decode private key PEM", ErrKeyUnavailable)
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, errl.Errorf("%w: failed to parse private key: %v", ErrKeyUnavailable, err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errl.Errorf("%w: private key is not RSA", ErrKeyUnavailable)
		}
		key = rsaKey
	case "RSA PRIVATE KEY":
		rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, errl.Errorf("%w: failed to parse private key: %v", ErrKeyUnavailable, err)
		}
		key = rsaKey
	default:
		return nil, errl.Errorf("%w: unexpected PEM block %q", ErrKeyUnavailable, block.Type)
	}

	if key.N.BitLen() < MinKeyBits {
		return nil, errl.Errorf("%w: private key is %d bits", ErrKeyUnavailable, key.N.BitLen())
	}
	return key, nil
}

// ParsePublicKeyPEM decodes a SubjectPublicKeyInfo RSA public key
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errl.Errorf("%w: failed to decode public key PEM", ErrKeyUnavailable)
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errl.Errorf("%w: failed to parse public key: %v", ErrKeyUnavailable, err)
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errl.Errorf("%w: public key is not RSA", ErrKeyUnavailable)
	}
	if pub.N.BitLen() < MinKeyBits {
		return nil, errl.Errorf("%w: public key is %d bits", ErrKeyUnavailable, pub.N.BitLen())
	}
	return pub, nil
}

// WriteKeyPair stores key under dir as private_key.pem (0600) and public_key.pem (0644)
func WriteKeyPair(dir string, key *rsa.PrivateKey) (privatePath, publicPath string, err error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", "", errl.Errorf("failed to create key directory: %w", err)
	}

	privPEM, err := EncodePrivateKeyPEM(key)
	if err != nil {
		return "", "", err
	}
	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	if err != nil {
		return "", "", err
	}

	privatePath = filepath.Join(dir, PrivateKeyFile)
	publicPath = filepath.Join(dir, PublicKeyFile)

	if err := os.WriteFile(privatePath, privPEM, 0o600); err != nil {
		return "", "", errl.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, pubPEM, 0o644); err != nil {
		return "", "", errl.Errorf("failed to write public key: %w", err)
	}

	return privatePath, publicPath, nil
}

// Fingerprint is the unpadded base64url SHA-256 of the SubjectPublicKeyInfo
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", errl.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
