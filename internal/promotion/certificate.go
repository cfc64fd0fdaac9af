package promotion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// SignatureAlgorithm names the digest used to seal certificates.
const SignatureAlgorithm = "SHA256"

var (
	// ErrInvalidSignature means the certificate payload no longer matches its hash.
	ErrInvalidSignature = errors.New("certificate signature is invalid")
	// ErrExpired means the certificate is past its expiry.
	ErrExpired = errors.New("certificate has expired")
)

// #region signing

// Digest returns the hex SHA-256 of the certificate with its signature
// cleared.
func (c Certificate) Digest() (string, error) {
	c.Signature = Signature{}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal certificate: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Sign seals the certificate at signedAt.
func (c *Certificate) Sign(signedAt time.Time) error {
	h, err := c.Digest()
	if err != nil {
		return fmt.Errorf("sign certificate: %w", err)
	}
	c.Signature = Signature{Algorithm: SignatureAlgorithm, SignedAt: signedAt, Hash: h}
	return nil
}

// Verify recomputes the digest and checks expiry against now. Both
// problems are reported when both apply.
func (c Certificate) Verify(now time.Time) error {
	var errs []error
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		errs = append(errs, ErrExpired)
	}
	h, err := c.Digest()
	if err != nil {
		return fmt.Errorf("verify certificate: %w", err)
	}
	if c.Signature.Algorithm != SignatureAlgorithm || c.Signature.Hash != h {
		errs = append(errs, ErrInvalidSignature)
	}
	if len(errs) > 0 {
		return fmt.Errorf("verify certificate %s: %w", c.CertificateID, errors.Join(errs...))
	}
	return nil
}

// #endregion signing

// #region files

// SaveCertificate writes c as indented JSON.
func SaveCertificate(path string, c *Certificate) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write certificate %s: %w", path, err)
	}
	return nil
}

// LoadCertificate reads a certificate written by SaveCertificate. It does
// not verify it.
func LoadCertificate(path string) (*Certificate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate %s: %w", path, err)
	}
	var c Certificate
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse certificate %s: %w", path, err)
	}
	return &c, nil
}

// #endregion files
