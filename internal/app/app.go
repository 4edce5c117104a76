// Package app wires configuration into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/property-mcp/internal/api"
	"github.com/Rrens/property-mcp/internal/config"
	"github.com/Rrens/property-mcp/internal/content"
	"github.com/Rrens/property-mcp/internal/mcp"
	"github.com/Rrens/property-mcp/internal/metrics"
	"github.com/Rrens/property-mcp/internal/repository"
	"github.com/Rrens/property-mcp/internal/repository/mongo"
	"github.com/Rrens/property-mcp/internal/repository/mysql"
	"github.com/Rrens/property-mcp/internal/repository/postgres"
	"github.com/Rrens/property-mcp/internal/repository/redis"
	"github.com/Rrens/property-mcp/internal/repository/sqlite"
	"github.com/Rrens/property-mcp/internal/security"
	"github.com/Rrens/property-mcp/internal/service"
)

// Stores returns a registry with every supported backend
func Stores() *repository.Registry {
	registry := repository.NewRegistry()
	registry.Register(postgres.Driver, postgres.Open)
	registry.Register(mysql.Driver, mysql.Open)
	registry.Register(sqlite.Driver, sqlite.Open)
	registry.Register(mongo.Driver, mongo.Open)
	return registry
}

// OpenStore connects to the configured backend, adding the retry decorator
// when enabled
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Backend, error) {
	backend, err := Stores().Open(ctx, repository.Options{
		Driver:          cfg.Driver,
		URL:             cfg.URL,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	return repository.WithRetry(backend, repository.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}), nil
}

// TokenManager returns the signed-token verifier, or nil when signed tokens
// are disabled
func TokenManager(cfg config.AuthConfig) (*security.TokenManager, error) {
	if !cfg.JWT.Enabled {
		return nil, nil
	}
	if cfg.APIToken == "" {
		return nil, errors.New("signed tokens require auth.api_token")
	}
	return security.NewTokenManager(cfg.APIToken, cfg.JWT.Issuer), nil
}

// NewGate builds the authentication gate from config
func NewGate(cfg config.AuthConfig) (*security.Gate, error) {
	tokens, err := TokenManager(cfg)
	if err != nil {
		return nil, err
	}
	return security.NewGate(security.GateConfig{
		Token:     cfg.APIToken,
		TokenHash: cfg.APITokenHash,
		Principal: cfg.Principal,
		Tokens:    tokens,
	})
}

// App is a fully wired server
type App struct {
	Handler http.Handler
	Metrics *metrics.Metrics

	store repository.Backend
	redis *redis.Client
}

// New connects to every dependency and builds the HTTP handler
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	gate, err := NewGate(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to configure auth: %w", err)
	}

	generator, err := content.NewGenerator(content.Options{
		DefaultLanguage: cfg.Content.DefaultLanguage,
		DefaultTone:     cfg.Content.DefaultTone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load content templates: %w", err)
	}

	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{store: store}

	var (
		cache   service.ContentCache
		limiter *redis.RateLimiter
	)
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		cache = redis.NewContentCache(client, cfg.Redis.CacheTTL)
		limiter = redis.NewRateLimiter(client, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New(cfg.Metrics.Namespace)
	}

	limits := service.SearchLimits{DefaultLimit: cfg.Search.DefaultLimit, MaxLimit: cfg.Search.MaxLimit}
	timeout := cfg.Database.QueryTimeout
	properties := service.NewPropertyService(store, timeout)

	server := mcp.NewServer(gate, mcp.Services{
		Search:     service.NewSearchService(store, limits, timeout),
		Properties: properties,
		Content:    service.NewContentService(properties, generator, cache),
		Digest:     service.NewDigestService(store, cfg.Digest.Window, timeout),
	}, mcp.Options{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		Metrics: a.Metrics,
	})

	deps := api.Dependencies{
		MCP:     server,
		Store:   store,
		Metrics: a.Metrics,
	}
	if a.redis != nil {
		deps.Cache = a.redis
		deps.Limiter = limiter
	}
	a.Handler = api.NewRouter(cfg, deps)

	log.Info().
		Str("driver", cfg.Database.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Bool("signed_tokens", cfg.Auth.JWT.Enabled).
		Strs("languages", generator.Languages()).
		Msg("Application wired")

	return a, nil
}

// Close releases store and cache connections
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// NewHTTPServer returns an *http.Server for handler with configured timeouts
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}
}
