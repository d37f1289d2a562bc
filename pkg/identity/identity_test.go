package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/signature"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestLoadPKCS12(t *testing.T) {
	keys, err := LoadPKCS12(testdata("broker.p12"), "secret")
	require.NoError(t, err)

	assert.Equal(t, "broker.example.com", keys.Certificate.Subject.CommonName)
	_, ok := keys.Key.(*rsa.PrivateKey)
	assert.True(t, ok)
	assert.NoError(t, keys.Close())
}

func TestLoadPKCS12_WrongPassword(t *testing.T) {
	_, err := LoadPKCS12(testdata("broker.p12"), "wrong")
	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestLoadPKCS12_NoPrivateKey(t *testing.T) {
	_, err := LoadPKCS12(testdata("certonly.p12"), "secret")
	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
	assert.Contains(t, err.Error(), "no private key")
}

// broker-aes.p12 and certonly-aes.p12 are written by `openssl pkcs12 -export`
// with the OpenSSL 3 defaults: PBES2/AES-256-CBC and a SHA-256 MAC.
func TestLoadPKCS12_PBES2(t *testing.T) {
	keys, err := LoadPKCS12(testdata("broker-aes.p12"), "secret")
	require.NoError(t, err)

	assert.Equal(t, "broker.example.com", keys.Certificate.Subject.CommonName)
	_, ok := keys.Key.(*rsa.PrivateKey)
	assert.True(t, ok)

	legacy, err := LoadPKCS12(testdata("broker.p12"), "secret")
	require.NoError(t, err)
	assert.True(t, keys.Certificate.Equal(legacy.Certificate))
}

func TestLoadPKCS12_PBES2WrongPassword(t *testing.T) {
	_, err := LoadPKCS12(testdata("broker-aes.p12"), "wrong")
	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestLoadPKCS12_PBES2NoPrivateKey(t *testing.T) {
	_, err := LoadPKCS12(testdata("certonly-aes.p12"), "secret")
	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
	assert.Contains(t, err.Error(), "no private key")
}

func TestLoadPKCS12_Missing(t *testing.T) {
	_, err := LoadPKCS12(testdata("missing.p12"), "secret")
	assert.ErrorIs(t, err, ErrCertNotFound)
}

func TestLoadPEM(t *testing.T) {
	keys, err := LoadPEM(testdata("broker.key"), testdata("broker.crt"))
	require.NoError(t, err)

	fromP12, err := LoadPKCS12(testdata("broker.p12"), "secret")
	require.NoError(t, err)
	assert.True(t, keys.Certificate.Equal(fromP12.Certificate))
}

func TestLoadPEM_MissingKey(t *testing.T) {
	_, err := LoadPEM(testdata("missing.key"), testdata("broker.crt"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestParsePEM_Invalid(t *testing.T) {
	_, err := ParsePEM([]byte("not pem"), nil)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestNew_SignsVerifiably(t *testing.T) {
	keys, err := LoadPKCS12(testdata("broker.p12"), "secret")
	require.NoError(t, err)

	id, err := New(1337, keys)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id.BrokerID())
	assert.Same(t, keys.Certificate, id.Certificate())

	canonical := "GET\n/1337\ndate: Mon, 01 Jan 2024 00:00:00 GMT\nx-digipost-userid: 1337\n\n"
	sig, err := id.Signer().Sign(canonical)
	require.NoError(t, err)

	pub := id.Certificate().PublicKey.(*rsa.PublicKey)
	assert.NoError(t, signature.Verify(pub, canonical, sig))
	assert.NoError(t, id.Close())
}

func TestNew_Validation(t *testing.T) {
	keys, err := LoadPKCS12(testdata("broker.p12"), "secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		brokerID int64
		keys     *KeyPair
	}{
		{"zero broker", 0, keys},
		{"negative broker", -1, keys},
		{"nil keys", 1, nil},
		{"no private key", 1, &KeyPair{Certificate: keys.Certificate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.brokerID, tt.keys)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apierror.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestNew_NonRSAKey(t *testing.T) {
	keys, err := LoadPEM(testdata("ec.key"), testdata("broker.crt"))
	require.NoError(t, err)

	_, err = New(1, keys)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestNew_GeneratedKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(7),
		Subject:      pkix.Name{CommonName: "generated"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	id, err := New(42, &KeyPair{Key: key, Certificate: cert})
	require.NoError(t, err)
	assert.Equal(t, "generated", id.Certificate().Subject.CommonName)
}

func TestLoad_Modes(t *testing.T) {
	_, err := Load(&Source{Mode: SourcePKCS12, Path: testdata("broker.p12"), Password: "secret"})
	assert.NoError(t, err)

	_, err = Load(&Source{Mode: SourcePEM, KeyFile: testdata("broker.key"), CertFile: testdata("broker.crt")})
	assert.NoError(t, err)

	_, err = Load(&Source{Mode: SourcePEM, KeyFile: testdata("broker.key")})
	assert.True(t, apierror.IsConfiguration(err))

	_, err = Load(&Source{Mode: "vault"})
	assert.True(t, apierror.IsConfiguration(err))

	_, err = Load(nil)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestOpen(t *testing.T) {
	id, err := Open(1337, &Source{Path: testdata("broker.p12"), Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id.BrokerID())

	_, err = Open(0, &Source{Path: testdata("broker.p12"), Password: "secret"})
	assert.True(t, apierror.IsConfiguration(err))
}

func TestKeyPair_CloseNil(t *testing.T) {
	var kp *KeyPair
	assert.NoError(t, kp.Close())
	closed := false
	kp = &KeyPair{closer: func() error { closed = true; return errors.New("x") }}
	assert.Error(t, kp.Close())
	assert.True(t, closed)
}
