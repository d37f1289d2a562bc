//go:build pkcs11

package identity

import (
	"fmt"

	"github.com/ThalesIgnite/crypto11"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// LoadPKCS11 finds the broker key pair and certificate on a PKCS#11 token.
// The returned KeyPair holds the token session until closed.
func LoadPKCS11(cfg *PKCS11Config) (*KeyPair, error) {
	if cfg == nil || cfg.ModulePath == "" {
		return nil, apierror.NewConfigurationError("PKCS#11 module path is required")
	}
	if cfg.KeyLabel == "" {
		return nil, apierror.NewConfigurationError("PKCS#11 key label is required")
	}

	config := &crypto11.Config{
		Path: cfg.ModulePath,
		Pin:  cfg.PIN,
	}
	if cfg.SlotID != nil {
		slotID := int(*cfg.SlotID)
		config.SlotNumber = &slotID
	}
	if cfg.SlotLabel != "" {
		config.TokenLabel = cfg.SlotLabel
	}

	ctx, err := crypto11.Configure(config)
	if err != nil {
		return nil, &apierror.ConfigurationError{Message: "configuring PKCS#11", Err: err}
	}

	key, err := ctx.FindKeyPair(nil, []byte(cfg.KeyLabel))
	if err != nil {
		ctx.Close()
		return nil, &apierror.ConfigurationError{Message: "finding key pair", Err: err}
	}
	if key == nil {
		ctx.Close()
		return nil, &apierror.ConfigurationError{Message: fmt.Sprintf("key %q", cfg.KeyLabel), Err: ErrKeyNotFound}
	}

	cert, err := ctx.FindCertificate(nil, []byte(cfg.KeyLabel), nil)
	if err != nil {
		ctx.Close()
		return nil, &apierror.ConfigurationError{Message: "finding certificate", Err: err}
	}
	if cert == nil {
		ctx.Close()
		return nil, &apierror.ConfigurationError{Message: fmt.Sprintf("certificate %q", cfg.KeyLabel), Err: ErrCertNotFound}
	}

	return &KeyPair{Key: key, Certificate: cert, closer: ctx.Close}, nil
}
