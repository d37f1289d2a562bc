package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sirosfoundation/go-digipost/internal/config"
	"github.com/sirosfoundation/go-digipost/pkg/digipost"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
	"github.com/sirosfoundation/go-digipost/pkg/identity"
)

// globalFlags holds flags shared by all commands
type globalFlags struct {
	configPath string
	logLevel   string
	metrics    bool
}

// app carries state built once per invocation
type app struct {
	flags    globalFlags
	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	identity *identity.Identity
	closers  []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "digipost",
		Short:         "Command line client for the Digipost API",
		Long:          "digipost sends signed requests to the Digipost document delivery API on behalf of a broker.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.flags.configPath, "config", "c", "digipost.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.flags.metrics, "metrics", false, "print client metrics after the command")

	cmd.AddCommand(
		newEntrypointCmd(a),
		newSenderCmd(a),
		newSearchCmd(a),
		newIdentifyCmd(a),
		newInboxCmd(a),
		newArchivesCmd(a),
		newStatusCmd(a),
		newSignCmd(a),
		newVerifyCmd(a),
	)
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	a.config = cfg

	level := cfg.Logging.Level
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	a.logger, err = newLogger(level)
	if err != nil {
		return err
	}

	if a.flags.metrics || cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
	}
	return nil
}

func (a *app) teardown(out io.Writer) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.registry != nil {
		if err := writeMetrics(out, a.registry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return firstErr
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadIdentity opens the broker certificate once.
func (a *app) loadIdentity() (*identity.Identity, error) {
	if a.identity != nil {
		return a.identity, nil
	}
	id, err := identity.Open(a.config.Broker.ID, a.config.IdentitySource())
	if err != nil {
		return nil, fmt.Errorf("loading broker certificate: %w", err)
	}
	a.identity = id
	a.closers = append(a.closers, id.Close)
	return id, nil
}

// client builds an API client from the configuration.
func (a *app) client(ctx context.Context) (*digipost.Client, error) {
	id, err := a.loadIdentity()
	if err != nil {
		return nil, err
	}
	env, err := a.config.ResolveEnvironment()
	if err != nil {
		return nil, err
	}

	cfg := &digipost.Config{
		Environment:           env,
		SenderID:              a.config.Broker.SenderID,
		Timeout:               a.config.HTTP.Timeout,
		ProxyURL:              a.config.HTTP.ProxyURL,
		ProxyUsername:         a.config.HTTP.ProxyUsername,
		ProxyPassword:         a.config.HTTP.ProxyPassword,
		LogRequestAndResponse: a.config.Logging.LogRequestAndResponse,
		Logger:                a.logger,
		CacheExpiration:       a.config.CacheExpiration(),
	}
	if a.registry != nil {
		cfg.Registerer = a.registry
	}

	if a.config.Cache.Type == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.config.Cache.Redis.Address,
			Password: a.config.Cache.Redis.Password,
			DB:       a.config.Cache.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		cfg.Cache = entrypoint.NewRedisCache(rdb, a.config.Cache.Redis.KeyPrefix, a.config.CacheExpiration(), a.logger)
	}

	return digipost.NewClient(cfg, id)
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
