package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unrolled/secure"

	"github.com/Rrens/property-mcp/internal/api/handler"
	customMiddleware "github.com/Rrens/property-mcp/internal/api/middleware"
	"github.com/Rrens/property-mcp/internal/api/response"
	"github.com/Rrens/property-mcp/internal/config"
	"github.com/Rrens/property-mcp/internal/mcp"
	"github.com/Rrens/property-mcp/internal/metrics"
)

// Dependencies are the collaborators the router serves
type Dependencies struct {
	MCP     *mcp.Server
	Store   handler.Pinger
	Cache   handler.Pinger // nil when redis is disabled
	Limiter customMiddleware.Limiter
	Metrics *metrics.Metrics
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger(deps.Metrics))
	r.Use(middleware.Recoverer)

	if cfg.RateLimit.Enabled {
		if deps.Limiter != nil {
			r.Use(customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit)
		} else if limit := cfg.RateLimit.RequestsPerMinute + cfg.RateLimit.Burst; limit > 0 {
			r.Use(customMiddleware.LocalRateLimit(limit))
		}
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Mcp-Protocol-Version", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		IsDevelopment:         !cfg.App.IsProduction(),
	})
	r.Use(sec.Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, "method not allowed")
	})

	// Public routes
	ready := map[string]handler.Pinger{"store": deps.Store}
	if cfg.Redis.Enabled {
		ready["cache"] = deps.Cache
	}
	r.Get("/", handler.Info(handler.ServerInfo{
		Name:      cfg.App.Name,
		Version:   cfg.App.Version,
		Endpoint:  "/mcp",
		Tools:     []string{mcp.ToolSearchProperties, mcp.ToolGetPropertyDetails, mcp.ToolGenerateListingContent},
		Resources: []string{mcp.DigestURI},
		Prompts:   []string{mcp.PromptMarketingEmail},
	}))
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(ready))

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	// Protected: the MCP handler authenticates every call itself
	r.Method(http.MethodPost, "/mcp", mcp.NewHTTPHandler(deps.MCP))

	return r
}
