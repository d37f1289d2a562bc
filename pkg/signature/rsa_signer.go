package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// Signer produces the X-Digipost-Signature value for a canonical string.
type Signer interface {
	Sign(canonical string) (string, error)
}

// RSASigner signs canonical strings with RSA PKCS#1 v1.5 over SHA-256.
//
// The key is read-only after construction, so a single RSASigner may be
// used by any number of goroutines at once.
type RSASigner struct {
	key  crypto.Signer
	pub  *rsa.PublicKey
	cert *x509.Certificate
}

// NewRSASigner creates a signer from a private key and its certificate.
// The key may live in software or in a hardware token.
func NewRSASigner(key crypto.Signer, cert *x509.Certificate) (*RSASigner, error) {
	if key == nil {
		return nil, apierror.NewConfigurationError("certificate has no private key")
	}
	if cert == nil {
		return nil, apierror.NewConfigurationError("certificate is required")
	}

	pub, ok := key.Public().(*rsa.PublicKey)
	if !ok {
		return nil, apierror.NewConfigurationError("private key is not an RSA key (%T)", key.Public())
	}
	certPub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, apierror.NewConfigurationError("certificate does not contain RSA public key")
	}
	if !pub.Equal(certPub) {
		return nil, apierror.NewConfigurationError("certificate does not match private key")
	}

	return &RSASigner{key: key, pub: pub, cert: cert}, nil
}

// Sign returns the base64-encoded signature of canonical.
func (s *RSASigner) Sign(canonical string) (string, error) {
	if s == nil || s.key == nil {
		return "", apierror.NewConfigurationError("certificate has no private key")
	}

	digest := sha256.Sum256([]byte(canonical))
	sig, err := s.key.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return "", &apierror.ConfigurationError{Message: "failed to compute signature", Err: err}
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// PublicKey returns the RSA public key matching the signing key.
func (s *RSASigner) PublicKey() *rsa.PublicKey {
	return s.pub
}

// Certificate returns the signing certificate.
func (s *RSASigner) Certificate() *x509.Certificate {
	return s.cert
}

// Verify checks a base64 signature over canonical against pub.
func Verify(pub *rsa.PublicKey, canonical, sig string) error {
	if pub == nil {
		return fmt.Errorf("public key is required")
	}

	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	digest := sha256.Sum256([]byte(canonical))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], raw); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
