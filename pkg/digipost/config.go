package digipost

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// DefaultTimeout bounds each API call.
const DefaultTimeout = 30 * time.Second

// Config holds client configuration
type Config struct {
	// Environment defaults to Production
	Environment Environment

	// SenderID is the sender the broker acts for; defaults to the broker id
	SenderID int64

	// Timeout defaults to DefaultTimeout
	Timeout time.Duration

	ProxyURL      string
	ProxyUsername string
	ProxyPassword string

	// LogRequestAndResponse logs each exchange and the signed data at
	// debug level
	LogRequestAndResponse bool

	Logger *zap.Logger

	// Cache stores entrypoints; defaults to an in-memory cache
	Cache entrypoint.Cache

	// CacheExpiration applies to the default caches
	CacheExpiration entrypoint.Expiration

	// Registerer receives client metrics when set
	Registerer prometheus.Registerer

	// Transport replaces the default base round tripper
	Transport http.RoundTripper

	// UserAgent replaces the default User-Agent
	UserAgent string

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns a configuration for env.
func DefaultConfig(env Environment) *Config {
	return &Config{
		Environment:     env,
		Timeout:         DefaultTimeout,
		CacheExpiration: entrypoint.DefaultExpiration(),
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults(brokerID int64) Config {
	cfg := *c
	if cfg.Environment.URL == "" {
		cfg.Environment = Production
	}
	if cfg.SenderID == 0 {
		cfg.SenderID = brokerID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

func (c *Config) validate() error {
	if c.SenderID < 0 {
		return apierror.NewConfigurationError("sender id must be a positive number, got %d", c.SenderID)
	}
	if c.Timeout < 0 {
		return apierror.NewConfigurationError("timeout must not be negative")
	}
	if _, err := c.Environment.BaseURL(); err != nil {
		return &apierror.ConfigurationError{Message: "invalid environment", Err: err}
	}
	return nil
}
