package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds a single JSON-RPC message
const maxBodyBytes = 1 << 20

// HTTPHandler serves JSON-RPC over plain request/response HTTP. The bearer
// credential is checked before the body is read.
type HTTPHandler struct {
	server *Server
}

// NewHTTPHandler creates a new HTTP handler for s
func NewHTTPHandler(s *Server) *HTTPHandler {
	return &HTTPHandler{server: s}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.server.Authenticate(r.Context(), "", r.Header.Get("Authorization"))
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
		writeJSON(w, http.StatusUnauthorized, errorResponse(nil, unauthorizedError()))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(nil, protocolError(codeInvalidRequest, "request body too large")))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, protocolError(codeParseError, "failed to read request body")))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, errorResponse(nil, protocolError(codeParseError, "parse error")))
		return
	}

	resp := h.server.Dispatch(ctx, &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write MCP response")
	}
}
