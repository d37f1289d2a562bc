package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/signature"
)

var fixedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func newTestSigner(t *testing.T) (*signature.RSASigner, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "broker 1337"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	signer, err := signature.NewRSASigner(key, cert)
	require.NoError(t, err)
	return signer, &key.PublicKey
}

// verifyingServer recomputes the canonical string for each request the way
// the Digipost API does and rejects bad signatures.
type verifyingServer struct {
	t        *testing.T
	pub      *rsa.PublicKey
	brokerID int64
	last     *http.Request
	lastBody []byte
}

func (s *verifyingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.last = r
	s.lastBody = body

	var hash *string
	if h := r.Header.Get(HeaderContentSHA256); h != "" {
		if h != signature.ContentHash(body) {
			http.Error(w, "content hash mismatch", http.StatusBadRequest)
			return
		}
		hash = &h
	}

	u := *r.URL
	u.Scheme = "http"
	u.Host = r.Host
	canonical := signature.CanonicalString(signature.NewContext(r.Method, &u, r.Header.Get("Date"), s.brokerID, hash))
	if err := signature.Verify(s.pub, canonical, r.Header.Get(HeaderSignature)); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func newAuthClient(t *testing.T, server *httptest.Server, cfg AuthConfig) *http.Client {
	t.Helper()
	return &http.Client{Transport: Chain(server.Client().Transport, Authenticate(cfg))}
}

func TestAuthenticate_PostWithBody(t *testing.T) {
	signer, pub := newTestSigner(t)
	vs := &verifyingServer{t: t, pub: pub, brokerID: 1337}
	server := httptest.NewServer(vs)
	defer server.Close()

	client := newAuthClient(t, server, AuthConfig{BrokerID: 1337, Signer: signer, Now: fixedNow})

	req, err := http.NewRequest(http.MethodPost, server.URL+"/1337/message", strings.NewReader(`{"x":1}`))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1337", vs.last.Header.Get(HeaderUserID))
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", vs.last.Header.Get("Date"))
	assert.Equal(t, MediaTypeV8, vs.last.Header.Get("Accept"))
	assert.Equal(t, "UEG/H3E98gR4Q1PoL2pKU1kxy2Tx9LSlrq/8tyCRiyI=", vs.last.Header.Get(HeaderContentSHA256))
	assert.Equal(t, `{"x":1}`, string(vs.lastBody))
	assert.True(t, strings.HasPrefix(vs.last.Header.Get("User-Agent"), "digipost-api-client-go/"+ClientVersion+" (go/"))
}

func TestAuthenticate_GetWithoutBody(t *testing.T) {
	signer, pub := newTestSigner(t)
	vs := &verifyingServer{t: t, pub: pub, brokerID: 1337}
	server := httptest.NewServer(vs)
	defer server.Close()

	client := newAuthClient(t, server, AuthConfig{BrokerID: 1337, Signer: signer})

	req, err := http.NewRequest(http.MethodGet, server.URL+"/1337/inbox?a=1&b=2", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, vs.last.Header.Get(HeaderContentSHA256))
	assert.NotEmpty(t, vs.last.Header.Get(HeaderSignature))
}

func TestAuthenticate_EmptyBodyIsHashed(t *testing.T) {
	signer, pub := newTestSigner(t)
	vs := &verifyingServer{t: t, pub: pub, brokerID: 9}
	server := httptest.NewServer(vs)
	defer server.Close()

	client := newAuthClient(t, server, AuthConfig{BrokerID: 9, Signer: signer})

	req, err := http.NewRequest(http.MethodPut, server.URL+"/9/archive", bytes.NewReader(nil))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, signature.ContentHash(nil), vs.last.Header.Get(HeaderContentSHA256))
}

func TestAuthenticate_ExplicitNoBody(t *testing.T) {
	signer, pub := newTestSigner(t)
	vs := &verifyingServer{t: t, pub: pub, brokerID: 9}
	server := httptest.NewServer(vs)
	defer server.Close()

	client := newAuthClient(t, server, AuthConfig{BrokerID: 9, Signer: signer})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/9/doc", http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, vs.last.Header.Get(HeaderContentSHA256))
}

func TestAuthenticate_DoesNotMutateCallerRequest(t *testing.T) {
	signer, _ := newTestSigner(t)

	var seen *http.Request
	send := Authenticate(AuthConfig{BrokerID: 1, Signer: signer})(func(req *http.Request) (*http.Response, error) {
		seen = req
		return stubResponse(http.StatusOK, "")(req)
	})

	req := httptest.NewRequest(http.MethodGet, "https://api.digipost.no/1/inbox", nil)
	resp, err := send(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get(HeaderSignature))
	assert.NotEmpty(t, seen.Header.Get(HeaderSignature))
}

type failingSigner struct{}

func (failingSigner) Sign(string) (string, error) {
	return "", apierror.NewConfigurationError("certificate has no private key")
}

func TestAuthenticate_SignerFailureAbortsBeforeNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := newAuthClient(t, server, AuthConfig{BrokerID: 1, Signer: failingSigner{}})

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/x", strings.NewReader("body"))
	_, err := client.Do(req)

	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestAuthenticate_NilSigner(t *testing.T) {
	send := Authenticate(AuthConfig{BrokerID: 1})(func(req *http.Request) (*http.Response, error) {
		t.Fatal("next must not be called")
		return nil, nil
	})

	_, err := send(httptest.NewRequest(http.MethodGet, "https://api.digipost.no/", nil))
	assert.True(t, apierror.IsConfiguration(err))
}

func TestAuthenticate_ContextCancellation(t *testing.T) {
	signer, _ := newTestSigner(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newAuthClient(t, server, AuthConfig{BrokerID: 1, Signer: signer})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/slow", nil)
	_, err := client.Do(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestAuthenticate_LogsSignatureData(t *testing.T) {
	signer, _ := newTestSigner(t)
	core, logs := observer.New(zap.DebugLevel)

	send := Authenticate(AuthConfig{
		BrokerID:         1337,
		Signer:           signer,
		Now:              fixedNow,
		Logger:           zap.New(core),
		LogSignatureData: true,
	})(SendFunc(stubResponse(http.StatusOK, "")))

	resp, err := send(httptest.NewRequest(http.MethodGet, "https://api.digipost.no/1337/Inbox?A=1", nil))
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "=== SIGNATURE DATA START===")
	assert.Contains(t, entries[0].Message, "/1337/inbox\n")
	assert.Contains(t, entries[0].Message, "a=1\n")
	assert.Contains(t, entries[0].Message, "=== SIGNATURE DATA END ===")
}

func TestAuthenticate_CustomHeaders(t *testing.T) {
	signer, _ := newTestSigner(t)

	var seen *http.Request
	send := Authenticate(AuthConfig{
		BrokerID:  5,
		Signer:    signer,
		Accept:    "application/vnd.digipost-v7+xml",
		UserAgent: "custom/1.0",
	})(func(req *http.Request) (*http.Response, error) {
		seen = req
		return stubResponse(http.StatusOK, "")(req)
	})

	resp, err := send(httptest.NewRequest(http.MethodGet, "https://api.digipost.no/", nil))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/vnd.digipost-v7+xml", seen.Header.Get("Accept"))
	assert.Equal(t, "custom/1.0", seen.Header.Get("User-Agent"))
}

func TestDefaultUserAgent(t *testing.T) {
	ua := DefaultUserAgent()
	version := strings.TrimPrefix(runtime.Version(), "go")
	assert.Equal(t, ClientName+"/"+ClientVersion+" (go/"+version+")", ua)
	assert.NotContains(t, ua, "go/go")
}
