// Package config handles configuration loading for the digipost CLI.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows certificate
// passwords and HSM PINs to be injected at runtime.
//
// # Configuration Sections
//
//   - broker: Broker id and the sender it acts for
//   - environment: Named Digipost environment or a custom URL
//   - certificate: Enterprise certificate source (p12, pem, or pkcs11)
//   - http: Timeout and proxy settings
//   - logging: Log level and request/response logging
//   - cache: Entrypoint cache (memory or redis)
//   - metrics: Client metrics
//
// # Example Configuration
//
//	broker:
//	  id: 123456
//	  senderId: 654321
//
//	environment:
//	  name: Test
//
//	certificate:
//	  mode: p12
//	  path: /etc/digipost/broker.p12
//	  password: ${DIGIPOST_P12_PASSWORD}
//
//	cache:
//	  type: redis
//	  redis:
//	    address: localhost:6379
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-digipost/pkg/digipost"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
	"github.com/sirosfoundation/go-digipost/pkg/identity"
)

// Config is the root configuration structure
type Config struct {
	Broker      BrokerConfig      `yaml:"broker"`
	Environment EnvironmentConfig `yaml:"environment"`
	Certificate CertificateConfig `yaml:"certificate"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// BrokerConfig identifies the broker and the sender it acts for
type BrokerConfig struct {
	ID int64 `yaml:"id"`
	// SenderID defaults to the broker id
	SenderID int64 `yaml:"senderId"`
}

// EnvironmentConfig selects the API deployment. URL takes precedence over
// Name.
type EnvironmentConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// CertificateConfig holds the enterprise certificate settings
type CertificateConfig struct {
	// Mode determines where the signing key comes from
	// - "p12": PKCS#12 file with password
	// - "pem": separate PEM key and certificate files
	// - "pkcs11": key stored in a PKCS#11 token (HSM/smart card)
	Mode string `yaml:"mode"`

	// p12 mode settings
	Path     string `yaml:"path"`
	Password string `yaml:"password"`

	// pem mode settings
	KeyFile  string `yaml:"keyFile"`
	CertFile string `yaml:"certFile"`

	PKCS11 PKCS11Config `yaml:"pkcs11"`
}

// PKCS11Config holds PKCS#11 HSM settings
type PKCS11Config struct {
	// Path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string `yaml:"modulePath"`
	// Slot ID or label to use
	SlotID    *uint  `yaml:"slotId"`
	SlotLabel string `yaml:"slotLabel"`
	// PIN for authentication (can be env var reference like ${HSM_PIN})
	PIN      string `yaml:"pin"`
	KeyLabel string `yaml:"keyLabel"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	ProxyURL      string        `yaml:"proxyUrl"`
	ProxyUsername string        `yaml:"proxyUsername"`
	ProxyPassword string        `yaml:"proxyPassword"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level                 string `yaml:"level"`
	LogRequestAndResponse bool   `yaml:"logRequestAndResponse"`
}

// CacheConfig holds entrypoint cache settings
type CacheConfig struct {
	// Type is "memory" or "redis"
	Type     string        `yaml:"type"`
	Sliding  time.Duration `yaml:"sliding"`
	Absolute time.Duration `yaml:"absolute"`
	Redis    RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML data
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Broker.SenderID == 0 {
		c.Broker.SenderID = c.Broker.ID
	}
	if c.Environment.Name == "" && c.Environment.URL == "" {
		c.Environment.Name = digipost.Production.Name
	}
	if c.Certificate.Mode == "" {
		c.Certificate.Mode = identity.SourcePKCS12
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = digipost.DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.Sliding == 0 {
		c.Cache.Sliding = entrypoint.DefaultSliding
	}
	if c.Cache.Absolute == 0 {
		c.Cache.Absolute = entrypoint.DefaultAbsolute
	}
	if c.Cache.Redis.KeyPrefix == "" {
		c.Cache.Redis.KeyPrefix = "digipost:"
	}
}

func (c *Config) validate() error {
	if c.Broker.ID <= 0 {
		return fmt.Errorf("broker.id is required")
	}

	if _, err := c.ResolveEnvironment(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	switch c.Certificate.Mode {
	case identity.SourcePKCS12:
		if c.Certificate.Path == "" {
			return fmt.Errorf("certificate.path is required when mode is 'p12'")
		}
	case identity.SourcePEM:
		if c.Certificate.KeyFile == "" || c.Certificate.CertFile == "" {
			return fmt.Errorf("certificate.keyFile and certificate.certFile are required when mode is 'pem'")
		}
	case identity.SourcePKCS11:
		if c.Certificate.PKCS11.ModulePath == "" {
			return fmt.Errorf("certificate.pkcs11.modulePath is required when mode is 'pkcs11'")
		}
	default:
		return fmt.Errorf("certificate.mode must be 'p12', 'pem', or 'pkcs11', got '%s'", c.Certificate.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got '%s'", c.Logging.Level)
	}

	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("cache.redis.address is required when type is 'redis'")
		}
	default:
		return fmt.Errorf("cache.type must be 'memory' or 'redis', got '%s'", c.Cache.Type)
	}

	return nil
}

// ResolveEnvironment returns the configured Digipost environment.
func (c *Config) ResolveEnvironment() (digipost.Environment, error) {
	if c.Environment.URL != "" {
		name := c.Environment.Name
		if name == "" {
			name = "Custom"
		}
		return digipost.NewEnvironment(name, c.Environment.URL)
	}
	return digipost.EnvironmentByName(c.Environment.Name)
}

// IdentitySource returns where the broker certificate is loaded from.
func (c *Config) IdentitySource() *identity.Source {
	return &identity.Source{
		Mode:     c.Certificate.Mode,
		Path:     c.Certificate.Path,
		Password: c.Certificate.Password,
		KeyFile:  c.Certificate.KeyFile,
		CertFile: c.Certificate.CertFile,
		PKCS11: identity.PKCS11Config{
			ModulePath: c.Certificate.PKCS11.ModulePath,
			SlotID:     c.Certificate.PKCS11.SlotID,
			SlotLabel:  c.Certificate.PKCS11.SlotLabel,
			PIN:        c.Certificate.PKCS11.PIN,
			KeyLabel:   c.Certificate.PKCS11.KeyLabel,
		},
	}
}

// CacheExpiration returns the entrypoint cache policy.
func (c *Config) CacheExpiration() entrypoint.Expiration {
	return entrypoint.Expiration{Sliding: c.Cache.Sliding, Absolute: c.Cache.Absolute}
}
