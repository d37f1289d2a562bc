package identity

import (
	"fmt"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// Key sources
const (
	SourcePKCS12 = "p12"
	SourcePEM    = "pem"
	SourcePKCS11 = "pkcs11"
)

// PKCS11Config holds PKCS#11 token settings
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string

	// SlotID is the slot number to use (optional if SlotLabel is provided)
	SlotID *uint

	// SlotLabel is the token label to search for
	SlotLabel string

	PIN string

	// KeyLabel is the CKA_LABEL shared by the key pair and certificate
	KeyLabel string
}

// Source describes where the broker key pair is loaded from.
type Source struct {
	Mode string

	// PKCS12 settings
	Path     string
	Password string

	// PEM settings
	KeyFile  string
	CertFile string

	PKCS11 PKCS11Config
}

// Load loads the key pair described by src.
func Load(src *Source) (*KeyPair, error) {
	if src == nil {
		return nil, apierror.NewConfigurationError("certificate source is required")
	}

	switch src.Mode {
	case SourcePKCS12, "":
		if src.Path == "" {
			return nil, apierror.NewConfigurationError("certificate path is required for mode %q", SourcePKCS12)
		}
		return LoadPKCS12(src.Path, src.Password)
	case SourcePEM:
		if src.KeyFile == "" || src.CertFile == "" {
			return nil, apierror.NewConfigurationError("keyFile and certFile are required for mode %q", SourcePEM)
		}
		return LoadPEM(src.KeyFile, src.CertFile)
	case SourcePKCS11:
		return LoadPKCS11(&src.PKCS11)
	default:
		return nil, apierror.NewConfigurationError("unknown certificate mode: %s", src.Mode)
	}
}

// Open loads the key pair described by src and binds it to brokerID.
func Open(brokerID int64, src *Source) (*Identity, error) {
	keys, err := Load(src)
	if err != nil {
		return nil, err
	}

	id, err := New(brokerID, keys)
	if err != nil {
		keys.Close()
		return nil, fmt.Errorf("creating identity: %w", err)
	}
	return id, nil
}
