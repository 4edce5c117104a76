package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/property-mcp/internal/api/response"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// readyTimeout bounds each dependency check
const readyTimeout = 2 * time.Second

// HealthCheck returns a simple liveness response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness including store and cache connectivity.
// Dependency names map to nil for optional ones that are not configured.
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		ready := true

		for name, dep := range deps {
			if dep == nil {
				checks[name] = "disabled"
				continue
			}

			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			err := dep.Ping(ctx)
			cancel()

			if err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
				checks[name] = "unavailable"
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		if !ready {
			response.ServiceUnavailable(w, map[string]any{
				"status": "not ready",
				"checks": checks,
			})
			return
		}

		response.OK(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

// ServerInfo describes the service on the root path
type ServerInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoint  string   `json:"endpoint"`
	Tools     []string `json:"tools"`
	Resources []string `json:"resources"`
	Prompts   []string `json:"prompts"`
}

// Info returns static service information. It never reveals configuration.
func Info(info ServerInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, info)
	}
}
