package identity

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// LoadPKCS12 loads the broker certificate and key from a .p12 file.
func LoadPKCS12(path, password string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apierror.ConfigurationError{Message: "reading certificate file", Err: ErrCertNotFound}
		}
		return nil, &apierror.ConfigurationError{Message: "reading certificate file", Err: err}
	}
	return ParsePKCS12(data, password)
}

// ParsePKCS12 decodes a PKCS#12 archive, legacy (3DES/SHA-1) or PBES2
// (AES/SHA-256) as written by OpenSSL 3. Archives that include the issuing
// chain are accepted; the certificate matching the private key is used.
func ParsePKCS12(data []byte, password string) (*KeyPair, error) {
	raw, leaf, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		if strings.Contains(err.Error(), "private key missing") {
			return nil, apierror.NewConfigurationError("certificate has no private key")
		}
		if strings.Contains(err.Error(), "certificate missing") {
			return nil, &apierror.ConfigurationError{Message: "decoding PKCS#12 certificate", Err: ErrCertNotFound}
		}
		return nil, &apierror.ConfigurationError{Message: "decoding PKCS#12 certificate", Err: err}
	}

	key, ok := raw.(crypto.Signer)
	if !ok {
		return nil, &apierror.ConfigurationError{
			Message: "parsing PKCS#12 private key",
			Err:     fmt.Errorf("unsupported key type %T", raw),
		}
	}

	certs := append([]*x509.Certificate{leaf}, chain...)
	return &KeyPair{Key: key, Certificate: matchingCertificate(key, certs)}, nil
}

func matchingCertificate(key crypto.Signer, certs []*x509.Certificate) *x509.Certificate {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	if pub, ok := key.Public().(equaler); ok {
		for _, cert := range certs {
			if pub.Equal(cert.PublicKey) {
				return cert
			}
		}
	}
	return certs[0]
}
