//go:build !pkcs11

package identity

import "errors"

// ErrPKCS11NotSupported is returned when PKCS#11 operations are attempted
// but the binary was not compiled with PKCS#11 support.
var ErrPKCS11NotSupported = errors.New("PKCS#11 support not compiled in (build with -tags pkcs11)")

// LoadPKCS11 returns an error because PKCS#11 is not compiled in.
func LoadPKCS11(cfg *PKCS11Config) (*KeyPair, error) {
	return nil, ErrPKCS11NotSupported
}
