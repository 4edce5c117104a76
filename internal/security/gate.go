package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/property-mcp/internal/domain"
)

const bearerScheme = "bearer"

// DefaultPrincipal labels callers authenticated with the shared secret
const DefaultPrincipal = "api-client"

// GateConfig holds the accepted credentials
type GateConfig struct {
	// Token is the shared bearer secret
	Token string
	// TokenHash is an optional bcrypt hash accepted in addition to Token
	TokenHash string
	// Principal labels callers presenting the shared secret
	Principal string
	// Tokens verifies signed tokens when set
	Tokens *TokenManager
}

// Gate authenticates inbound calls. It holds no per-call state.
type Gate struct {
	digest    [sha256.Size]byte
	hasToken  bool
	hash      []byte
	principal string
	tokens    *TokenManager
}

// NewGate creates a gate. At least one credential source must be configured.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Token == "" && cfg.TokenHash == "" {
		return nil, errors.New("no bearer secret configured")
	}
	if cfg.TokenHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.TokenHash)); err != nil {
			return nil, errors.New("api token hash is not a bcrypt hash")
		}
	}

	g := &Gate{
		principal: cfg.Principal,
		tokens:    cfg.Tokens,
	}
	if g.principal == "" {
		g.principal = DefaultPrincipal
	}
	if cfg.Token != "" {
		g.digest = sha256.Sum256([]byte(cfg.Token))
		g.hasToken = true
	}
	if cfg.TokenHash != "" {
		g.hash = []byte(cfg.TokenHash)
	}
	return g, nil
}

// Authenticate validates the raw Authorization header value.
// Every failure returns domain.ErrUnauthorized without detail.
func (g *Gate) Authenticate(credential string) (domain.AuthContext, error) {
	token, ok := parseBearer(credential)
	if !ok {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}

	if g.hasToken {
		presented := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(presented[:], g.digest[:]) == 1 {
			return domain.AuthContext{Valid: true, Principal: g.principal}, nil
		}
	}

	if g.hash != nil && bcrypt.CompareHashAndPassword(g.hash, []byte(token)) == nil {
		return domain.AuthContext{Valid: true, Principal: g.principal}, nil
	}

	if g.tokens != nil && strings.Count(token, ".") == 2 {
		if subject, err := g.tokens.Verify(token); err == nil {
			return domain.AuthContext{Valid: true, Principal: subject}, nil
		}
	}

	return domain.AuthContext{}, domain.ErrUnauthorized
}

func parseBearer(credential string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(credential), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
