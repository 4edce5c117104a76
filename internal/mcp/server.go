package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/metrics"
)

// Authenticator validates the credential presented with a call
type Authenticator interface {
	Authenticate(credential string) (domain.AuthContext, error)
}

// Searcher runs property searches from raw arguments
type Searcher interface {
	Search(ctx context.Context, rawArgs map[string]any) (*domain.SearchResult, error)
}

// PropertyGetter resolves a single property
type PropertyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

// ContentGenerator renders listing copy
type ContentGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.RenderedContent, error)
}

// DigestBuilder builds the recent listings view
type DigestBuilder interface {
	Digest(ctx context.Context, now time.Time) (*domain.DigestResult, error)
}

// Services are the collaborators reached through the dispatch tables
type Services struct {
	Search     Searcher
	Properties PropertyGetter
	Content    ContentGenerator
	Digest     DigestBuilder
}

// Options configures a Server
type Options struct {
	Name    string
	Version string
	Now     func() time.Time // defaults to time.Now
	Metrics *metrics.Metrics
}

// call carries per-request bookkeeping for logs and metrics
type call struct {
	capability string
	outcome    string
}

type methodHandler func(ctx context.Context, req *Request, c *call) (any, *RPCError)

// Server routes authenticated MCP calls to the property services
type Server struct {
	gate      Authenticator
	services  Services
	opts      Options
	methods   map[string]methodHandler
	tools     map[string]*tool
	resources map[string]*resource
	prompts   map[string]*prompt
}

// NewServer creates a server with its dispatch tables
func NewServer(gate Authenticator, services Services, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "real-estate-mcp"
	}
	if opts.Version == "" {
		opts.Version = "0.1.0"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		gate:     gate,
		services: services,
		opts:     opts,
	}
	s.methods = map[string]methodHandler{
		"initialize":     s.handleInitialize,
		"ping":           s.handlePing,
		"tools/list":     s.handleToolsList,
		"tools/call":     s.handleToolsCall,
		"resources/list": s.handleResourcesList,
		"resources/read": s.handleResourcesRead,
		"prompts/list":   s.handlePromptsList,
		"prompts/get":    s.handlePromptsGet,
	}
	s.tools = indexTools(s.toolTable())
	s.resources = indexResources(s.resourceTable())
	s.prompts = indexPrompts(s.promptTable())
	return s
}

const instructions = "Search the real-estate catalog, read full property details, " +
	"generate listing copy and read today's new listings."

type authKey struct{}

// AuthFromContext returns the caller established for the current call
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	auth, ok := ctx.Value(authKey{}).(domain.AuthContext)
	return auth, ok
}

// Authenticate runs the gate and records rejected calls. Nothing about the
// request beyond its method is logged.
func (s *Server) Authenticate(ctx context.Context, method, credential string) (context.Context, error) {
	auth, err := s.gate.Authenticate(credential)
	if err != nil || !auth.Valid {
		s.opts.Metrics.ObserveCall(metricMethod(method), "", KindUnauthorized, 0)
		log.Warn().Str("method", metricMethod(method)).Msg("Rejected unauthenticated MCP call")
		return ctx, domain.ErrUnauthorized
	}
	return context.WithValue(ctx, authKey{}, auth), nil
}

// Handle authenticates and serves one request. A nil response means the
// request was a notification. An unauthenticated call always gets an error,
// notifications included.
func (s *Server) Handle(ctx context.Context, credential string, req *Request) *Response {
	ctx, err := s.Authenticate(ctx, req.Method, credential)
	if err != nil {
		return &Response{JSONRPC: jsonrpcVersion, ID: responseID(req.ID), Error: unauthorizedError()}
	}
	return s.Dispatch(ctx, req)
}

// Dispatch serves a request whose caller has already been authenticated
func (s *Server) Dispatch(ctx context.Context, req *Request) *Response {
	if _, ok := AuthFromContext(ctx); !ok {
		return &Response{JSONRPC: jsonrpcVersion, ID: responseID(req.ID), Error: unauthorizedError()}
	}

	if req.JSONRPC != jsonrpcVersion {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, protocolError(codeInvalidRequest, "unsupported JSON-RPC version"))
	}
	if req.IsNotification() {
		log.Debug().Str("method", req.Method).Msg("MCP notification")
		return nil
	}

	start := time.Now()
	c := &call{outcome: "ok"}

	var (
		result any
		rpcErr *RPCError
	)
	handler, ok := s.methods[req.Method]
	if ok {
		result, rpcErr = handler(ctx, req, c)
	} else {
		rpcErr = protocolError(codeMethodNotFound, "unknown method: "+req.Method)
	}
	if rpcErr != nil {
		c.outcome = outcomeFor(rpcErr)
	}

	elapsed := time.Since(start)
	s.opts.Metrics.ObserveCall(metricMethod(req.Method), c.capability, c.outcome, elapsed)

	event := log.Info()
	if c.outcome == KindInternal || c.outcome == KindStoreUnavailable || c.outcome == KindStoreTimeout {
		event = log.Warn()
	}
	auth, _ := AuthFromContext(ctx)
	event.
		Str("method", req.Method).
		Str("capability", c.capability).
		Str("outcome", c.outcome).
		Str("principal", auth.Principal).
		Dur("latency", elapsed).
		Msg("MCP call")

	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result}
}

func (s *Server) handleInitialize(_ context.Context, req *Request, _ *call) (any, *RPCError) {
	if len(req.Params) > 0 {
		var params initializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, protocolError(codeInvalidParams, "invalid initialize params")
		}
	}

	return initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: serverCapabilities{
			Tools:     &listCapability{},
			Resources: &listCapability{},
			Prompts:   &listCapability{},
		},
		ServerInfo:   serverInfo{Name: s.opts.Name, Version: s.opts.Version},
		Instructions: instructions,
	}, nil
}

func (s *Server) handlePing(context.Context, *Request, *call) (any, *RPCError) {
	return map[string]any{}, nil
}

// decodeParams unmarshals params into v, rejecting absent params
func decodeParams(req *Request, v any) *RPCError {
	if len(req.Params) == 0 || string(req.Params) == "null" {
		return protocolError(codeInvalidParams, "params required for "+req.Method)
	}
	if err := json.Unmarshal(req.Params, v); err != nil {
		return protocolError(codeInvalidParams, fmt.Sprintf("invalid %s params", req.Method))
	}
	return nil
}

func errorResponse(id json.RawMessage, rpcErr *RPCError) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: responseID(id), Error: rpcErr}
}

func responseID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func outcomeFor(rpcErr *RPCError) string {
	if rpcErr.Data != nil {
		return rpcErr.Data.Kind
	}
	return "protocol_error"
}

// metricMethod keeps label cardinality bounded for unknown methods
func metricMethod(method string) string {
	if strings.HasPrefix(method, "notifications/") {
		return "notifications"
	}
	switch method {
	case "initialize", "ping", "tools/list", "tools/call", "resources/list",
		"resources/read", "prompts/list", "prompts/get":
		return method
	}
	return "unknown"
}
