package identity

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// LoadPEM loads a key pair from a PEM private key file and a PEM
// certificate file.
func LoadPEM(keyPath, certPath string) (*KeyPair, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apierror.ConfigurationError{Message: "reading key file", Err: ErrKeyNotFound}
		}
		return nil, &apierror.ConfigurationError{Message: "reading key file", Err: err}
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apierror.ConfigurationError{Message: "reading certificate file", Err: ErrCertNotFound}
		}
		return nil, &apierror.ConfigurationError{Message: "reading certificate file", Err: err}
	}

	return ParsePEM(keyPEM, certPEM)
}

// ParsePEM parses a PEM private key and PEM certificate.
func ParsePEM(keyPEM, certPEM []byte) (*KeyPair, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, apierror.NewConfigurationError("no PEM block found in private key")
	}
	key, err := parsePrivateKey(block)
	if err != nil {
		return nil, &apierror.ConfigurationError{Message: "parsing private key", Err: err}
	}

	cert, err := parseCertificatePEM(certPEM)
	if err != nil {
		return nil, &apierror.ConfigurationError{Message: "parsing certificate", Err: err}
	}

	return &KeyPair{Key: key, Certificate: cert}, nil
}

func parsePrivateKey(block *pem.Block) (crypto.Signer, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		// PKCS#12 bags converted to PEM carry PKCS#1 or SEC 1 bytes under
		// this type; plain files carry PKCS#8.
		if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("key is not a signer")
		}
		return signer, nil
	default:
		return nil, fmt.Errorf("unsupported key type: %s", block.Type)
	}
}

func parseCertificatePEM(certPEM []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, certPEM = pem.Decode(certPEM)
		if block == nil {
			return nil, fmt.Errorf("no PEM block found")
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}
