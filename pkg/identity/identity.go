// Package identity holds the broker identity used to sign Digipost requests.
//
// An identity pairs the broker id with the broker's enterprise certificate
// and its private key. The key can come from different backends:
//
//   - PKCS#12: a .p12 file with password, as issued by Buypass or Commfides
//   - PEM: separate key and certificate files
//   - PKCS#11: keys stored in hardware security modules (HSM) or smart cards
//
// The identity is immutable once constructed and safe for concurrent use.
package identity

import (
	"crypto"
	"crypto/x509"
	"errors"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/signature"
)

// Common errors
var (
	ErrKeyNotFound  = errors.New("signing key not found")
	ErrCertNotFound = errors.New("certificate not found")
)

// KeyPair is a private key and the certificate it belongs to.
type KeyPair struct {
	Key         crypto.Signer
	Certificate *x509.Certificate

	closer func() error
}

// Close releases resources held by the key backend.
func (k *KeyPair) Close() error {
	if k == nil || k.closer == nil {
		return nil
	}
	return k.closer()
}

// Identity is the broker identity for an API client.
type Identity struct {
	brokerID int64
	signer   *signature.RSASigner
	keys     *KeyPair
}

// New creates an identity for brokerID signing with keys.
func New(brokerID int64, keys *KeyPair) (*Identity, error) {
	if brokerID <= 0 {
		return nil, apierror.NewConfigurationError("broker id must be a positive number, got %d", brokerID)
	}
	if keys == nil {
		return nil, apierror.NewConfigurationError("certificate is required")
	}

	signer, err := signature.NewRSASigner(keys.Key, keys.Certificate)
	if err != nil {
		return nil, err
	}

	return &Identity{brokerID: brokerID, signer: signer, keys: keys}, nil
}

// BrokerID returns the broker id sent in X-Digipost-UserId.
func (i *Identity) BrokerID() int64 {
	return i.brokerID
}

// Signer returns the request signer.
func (i *Identity) Signer() *signature.RSASigner {
	return i.signer
}

// Certificate returns the broker certificate.
func (i *Identity) Certificate() *x509.Certificate {
	return i.keys.Certificate
}

// Close releases the key backend.
func (i *Identity) Close() error {
	return i.keys.Close()
}
