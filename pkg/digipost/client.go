package digipost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
	"github.com/sirosfoundation/go-digipost/pkg/identity"
	"github.com/sirosfoundation/go-digipost/pkg/transport"
)

// ErrInvalidSender is wrapped when the broker may not act for a sender.
var ErrInvalidSender = errors.New("broker not authorized or sender does not exist")

// Client is the Digipost API client. It is safe for concurrent use.
type Client struct {
	config   Config
	identity *identity.Identity
	base     *url.URL
	requests *requestHelper
	roots    entrypoint.Cache
	senders  *entrypoint.MemoryCache[*SenderInformation]
	metrics  *transport.Metrics
	logger   *zap.Logger
}

// NewClient creates a client that signs requests with id.
func NewClient(config *Config, id *identity.Identity) (*Client, error) {
	if config == nil {
		return nil, apierror.NewConfigurationError("config is required")
	}
	if id == nil {
		return nil, apierror.NewConfigurationError("identity is required")
	}

	cfg := config.withDefaults(id.BrokerID())
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	base, _ := cfg.Environment.BaseURL()

	metrics, err := transport.NewMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	middleware := []transport.Middleware{
		metrics.Middleware(),
		transport.Authenticate(transport.AuthConfig{
			BrokerID:         id.BrokerID(),
			Signer:           id.Signer(),
			UserAgent:        cfg.UserAgent,
			Now:              cfg.Now,
			Logger:           cfg.Logger,
			LogSignatureData: cfg.LogRequestAndResponse,
		}),
	}
	if cfg.LogRequestAndResponse {
		middleware = append(middleware, transport.Logging(cfg.Logger, true))
	}
	middleware = append(middleware, transport.Decompress())

	httpsConfig := transport.DefaultHTTPSConfig()
	httpsConfig.Timeout = cfg.Timeout
	httpsConfig.ProxyURL = cfg.ProxyURL
	httpsConfig.ProxyUsername = cfg.ProxyUsername
	httpsConfig.ProxyPassword = cfg.ProxyPassword

	var httpClient *transport.HTTPSClient
	if cfg.Transport != nil {
		httpClient = transport.NewHTTPSClientWithTransport(httpsConfig, cfg.Transport, middleware...)
	} else {
		httpClient, err = transport.NewHTTPSClient(httpsConfig, middleware...)
		if err != nil {
			return nil, &apierror.ConfigurationError{Message: "failed to create http client", Err: err}
		}
	}

	roots := cfg.Cache
	if roots == nil {
		memory, err := entrypoint.NewMemoryCache[*entrypoint.Root](cfg.CacheExpiration, entrypoint.WithClock(cfg.Now))
		if err != nil {
			return nil, err
		}
		roots = memory
	}
	senders, err := entrypoint.NewMemoryCache[*SenderInformation](cfg.CacheExpiration, entrypoint.WithClock(cfg.Now))
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   cfg,
		identity: id,
		base:     base,
		requests: &requestHelper{client: httpClient, base: base},
		roots:    roots,
		senders:  senders,
		metrics:  metrics,
		logger:   cfg.Logger.With(zap.Int64("sender_id", cfg.SenderID)),
	}, nil
}

// SenderID returns the sender the client acts for.
func (c *Client) SenderID() int64 {
	return c.config.SenderID
}

// Environment returns the environment the client talks to.
func (c *Client) Environment() Environment {
	return c.config.Environment
}

// Identity returns the broker identity that signs requests.
func (c *Client) Identity() *identity.Identity {
	return c.identity
}

// rootURI is the entrypoint of a sender.
func (c *Client) rootURI(senderID int64) string {
	return c.base.ResolveReference(&url.URL{Path: strconv.FormatInt(senderID, 10)}).String()
}

// GetRoot returns the entrypoint of the configured sender.
func (c *Client) GetRoot(ctx context.Context) (*entrypoint.Root, error) {
	return c.getRoot(ctx, c.config.SenderID)
}

// GetRootForSender returns the entrypoint of another sender the broker
// acts for.
func (c *Client) GetRootForSender(ctx context.Context, senderID int64) (*entrypoint.Root, error) {
	if senderID <= 0 {
		return nil, apierror.NewConfigurationError("sender id must be a positive number, got %d", senderID)
	}
	return c.getRoot(ctx, senderID)
}

func (c *Client) getRoot(ctx context.Context, senderID int64) (*entrypoint.Root, error) {
	uri := c.rootURI(senderID)
	key := "root" + uri

	if root, ok := c.roots.Get(ctx, key); ok {
		return root, nil
	}

	start := time.Now()
	body, err := c.requests.getBytes(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entrypoint: %w", err)
	}
	root, err := entrypoint.Parse(body)
	if err != nil {
		return nil, &apierror.ParseError{Raw: body, Err: err}
	}

	c.roots.Set(ctx, key, root)
	c.logger.Debug("fetched entrypoint",
		zap.String("uri", uri),
		zap.Int("links", len(root.Names())),
		zap.Duration("duration", time.Since(start)))
	return root, nil
}

// link resolves a relation on the configured sender's entrypoint.
func (c *Client) link(ctx context.Context, name string) (string, error) {
	root, err := c.GetRoot(ctx)
	if err != nil {
		return "", err
	}
	link, err := root.Link(name)
	if err != nil {
		return "", err
	}
	return link.URI, nil
}

// GetSenderInformation returns information about senderID and checks that
// the broker may act for it.
func (c *Client) GetSenderInformation(ctx context.Context, senderID int64) (*SenderInformation, error) {
	base, err := c.link(ctx, entrypoint.RelGetSenderInformation)
	if err != nil {
		return nil, err
	}
	return c.senderInformation(ctx, joinPath(base, strconv.FormatInt(senderID, 10)))
}

// GetSenderInformationByOrganisation looks up a sender by organisation
// number and optional part id.
func (c *Client) GetSenderInformationByOrganisation(ctx context.Context, orgNumber, partID string) (*SenderInformation, error) {
	if orgNumber == "" {
		return nil, apierror.NewConfigurationError("organisation number is required")
	}
	base, err := c.link(ctx, entrypoint.RelGetSenderInformationByOrgNo)
	if err != nil {
		return nil, err
	}
	segments := []string{orgNumber}
	if partID != "" {
		segments = append(segments, partID)
	}
	return c.senderInformation(ctx, joinPath(base, segments...))
}

func (c *Client) senderInformation(ctx context.Context, uri string) (*SenderInformation, error) {
	key := "senderOrganisation" + uri

	info, ok := c.senders.Get(ctx, key)
	if !ok {
		var err error
		info, err = get[SenderInformation](ctx, c.requests, uri)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sender information: %w", err)
		}
		c.senders.Set(ctx, key, info)
	}

	if !info.Valid() {
		return nil, &apierror.ConfigurationError{
			Message: fmt.Sprintf("sender %d has status %s", info.SenderID, info.Status),
			Err:     ErrInvalidSender,
		}
	}
	return info, nil
}

// Metrics returns the client's request metrics.
func (c *Client) Metrics() *transport.Metrics {
	return c.metrics
}

// HTTPClient returns the signing *http.Client for requests the client has
// no method for.
func (c *Client) HTTPClient() *http.Client {
	return c.requests.client.HTTPClient()
}
