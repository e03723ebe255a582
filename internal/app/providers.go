package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/config"
	"fantasygw/internal/infra/dispatch"
	"fantasygw/internal/infra/httpapi"
	"fantasygw/internal/infra/kvstore"
	"fantasygw/internal/infra/mcpserver"
	"fantasygw/internal/infra/refcache"
	"fantasygw/internal/infra/sports"
	"fantasygw/internal/infra/telemetry"
	"fantasygw/internal/infra/upstream"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewUpstreamClient(cfg config.Config, logger *zap.Logger, metrics domain.Metrics) *upstream.Client {
	return upstream.NewClient(upstream.Options{
		Platform:   domain.PlatformSleeper,
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    cfg.Upstream.Timeout,
		UserAgent:  cfg.Upstream.UserAgent,
		AuthHeader: cfg.Upstream.AuthHeader,
		AuthToken:  cfg.Upstream.AuthToken,
		Logger:     logger,
		Metrics:    metrics,
	})
}

// NewKVStore opens the durable cache backend. The cleanup closes it.
func NewKVStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.KVStore, func(), error) {
	store, err := kvstore.Open(ctx, kvstore.Options{
		Backend: cfg.Cache.Backend,
		Path:    cfg.Cache.Path,
		DSN:     cfg.Cache.DSN,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("reference cache store opened", zap.String("backend", cfg.Cache.Backend))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close reference cache store failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func NewCatalogCache(store domain.KVStore, client *upstream.Client, cfg config.Config, logger *zap.Logger, metrics domain.Metrics) *refcache.Cache {
	return refcache.New(store, sports.NewCatalogSource(client), refcache.Options{
		TTL:      cfg.Cache.TTL,
		LocalTTL: cfg.Cache.LocalTTL,
		Logger:   logger,
		Metrics:  metrics,
	})
}

func NewSportRegistry(client *upstream.Client, cache *refcache.Cache, logger *zap.Logger) *sports.Registry {
	return sports.NewRegistry(
		sports.NewFootball(client, cache, logger),
		sports.NewBasketball(client, cache, logger),
	)
}

func NewDispatcher(registry *sports.Registry, cfg config.Config, logger *zap.Logger, metrics domain.Metrics) *dispatch.Dispatcher {
	return dispatch.New(registry, dispatch.Options{
		Timeout: cfg.Tools.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})
}

// NewMCPServer returns nil when the MCP surface is disabled.
func NewMCPServer(dispatcher *dispatch.Dispatcher, cfg config.Config, logger *zap.Logger) (*mcpserver.Server, error) {
	if !cfg.Server.MCP.Enabled {
		return nil, nil
	}
	return mcpserver.New(dispatcher, Version, logger)
}

func NewHTTPHandler(dispatcher *dispatch.Dispatcher, mcpServer *mcpserver.Server, registry *prometheus.Registry, cfg config.Config, logger *zap.Logger) http.Handler {
	opts := httpapi.Options{
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}
	if mcpServer != nil {
		opts.MCPPath = cfg.Server.MCP.Path
		opts.MCPHandler = mcpServer.Handler()
	}
	if cfg.Server.MetricsEnabled {
		opts.Gatherer = registry
	}
	return httpapi.NewRouter(dispatcher, opts)
}
