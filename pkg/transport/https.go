package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// HTTPSConfig contains HTTPS client configuration
type HTTPSConfig struct {
	MinTLSVersion   uint16
	MaxTLSVersion   uint16
	RootCAs         *x509.CertPool
	Timeout         time.Duration
	IdleConnTimeout time.Duration

	// ProxyURL routes requests through a proxy. Empty means the
	// environment proxy settings (HTTPS_PROXY, NO_PROXY) apply.
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
}

// DefaultHTTPSConfig returns a default HTTPS configuration
func DefaultHTTPSConfig() *HTTPSConfig {
	return &HTTPSConfig{
		MinTLSVersion:   TLS12,
		MaxTLSVersion:   TLS13,
		Timeout:         30 * time.Second,
		IdleConnTimeout: 90 * time.Second,
	}
}

// NewHTTPTransport builds the base round tripper for the middleware chain.
// Response decompression is left to the Decompress middleware.
func NewHTTPTransport(config *HTTPSConfig) (*http.Transport, error) {
	if config == nil {
		config = DefaultHTTPSConfig()
	}

	proxy, err := proxyFunc(config)
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		Proxy: proxy,
		TLSClientConfig: &tls.Config{
			MinVersion: config.MinTLSVersion,
			MaxVersion: config.MaxTLSVersion,
			RootCAs:    config.RootCAs,
		},
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		DisableCompression:  true,
	}, nil
}

func proxyFunc(config *HTTPSConfig) (func(*http.Request) (*url.URL, error), error) {
	if config.ProxyURL == "" {
		return http.ProxyFromEnvironment, nil
	}

	proxyURL, err := url.Parse(config.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", config.ProxyURL)
	}
	if config.ProxyUsername != "" {
		proxyURL.User = url.UserPassword(config.ProxyUsername, config.ProxyPassword)
	}

	return http.ProxyURL(proxyURL), nil
}

// HTTPSClient sends Digipost API requests through a middleware chain
type HTTPSClient struct {
	client *http.Client
	config *HTTPSConfig
}

// NewHTTPSClient creates a new HTTPS client with the given middleware
// applied in order, outermost first.
func NewHTTPSClient(config *HTTPSConfig, middleware ...Middleware) (*HTTPSClient, error) {
	if config == nil {
		config = DefaultHTTPSConfig()
	}

	base, err := NewHTTPTransport(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return NewHTTPSClientWithTransport(config, base, middleware...), nil
}

// NewHTTPSClientWithTransport creates a client over a caller-supplied base
// round tripper, such as an httptest server's client transport.
func NewHTTPSClientWithTransport(config *HTTPSConfig, base http.RoundTripper, middleware ...Middleware) *HTTPSClient {
	if config == nil {
		config = DefaultHTTPSConfig()
	}

	return &HTTPSClient{
		client: &http.Client{
			Transport: Chain(base, middleware...),
			Timeout:   config.Timeout,
		},
		config: config,
	}
}

// Do sends req. The request context controls cancellation.
func (c *HTTPSClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// HTTPClient returns the underlying *http.Client.
func (c *HTTPSClient) HTTPClient() *http.Client {
	return c.client
}
