package security_test

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/security"
)

const testSecret = "s3cret-token"

func TestGate_Authenticate(t *testing.T) {
	gate, err := security.NewGate(security.GateConfig{Token: testSecret})
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	tests := []struct {
		name       string
		credential string
		wantValid  bool
	}{
		{"valid", "Bearer " + testSecret, true},
		{"lowercase scheme", "bearer " + testSecret, true},
		{"surrounding whitespace", "  Bearer " + testSecret + " ", true},
		{"missing", "", false},
		{"scheme only", "Bearer", false},
		{"empty token", "Bearer   ", false},
		{"wrong scheme", "Basic " + testSecret, false},
		{"no scheme", testSecret, false},
		{"wrong token", "Bearer nope", false},
		{"prefix of secret", "Bearer s3cret", false},
		{"secret with suffix", "Bearer " + testSecret + "x", false},
		{"two tokens", "Bearer " + testSecret + " " + testSecret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := gate.Authenticate(tt.credential)
			if tt.wantValid {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				if !auth.Valid {
					t.Error("expected valid auth context")
				}
				if auth.Principal != security.DefaultPrincipal {
					t.Errorf("principal mismatch: got %q", auth.Principal)
				}
				return
			}

			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if auth.Valid {
				t.Error("auth context must not be valid on failure")
			}
			if err.Error() != "invalid credential" {
				t.Errorf("error must carry no detail, got %q", err.Error())
			}
		})
	}
}

func TestGate_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	gate, err := security.NewGate(security.GateConfig{TokenHash: string(hash), Principal: "ops"})
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	auth, err := gate.Authenticate("Bearer " + testSecret)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if auth.Principal != "ops" {
		t.Errorf("principal mismatch: got %q", auth.Principal)
	}

	if _, err := gate.Authenticate("Bearer wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_SignedTokens(t *testing.T) {
	tokens := security.NewTokenManager(testSecret, "property-mcp")
	gate, err := security.NewGate(security.GateConfig{Token: testSecret, Tokens: tokens})
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}

	signed, err := tokens.Issue("crm-sync", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}

	auth, err := gate.Authenticate("Bearer " + signed)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if auth.Principal != "crm-sync" {
		t.Errorf("principal mismatch: got %q", auth.Principal)
	}

	forged := security.NewTokenManager("other-secret", "property-mcp")
	bad, _ := forged.Issue("crm-sync", time.Hour)
	if _, err := gate.Authenticate("Bearer " + bad); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNewGate_RequiresSecret(t *testing.T) {
	if _, err := security.NewGate(security.GateConfig{}); err == nil {
		t.Error("expected error without secret")
	}
	if _, err := security.NewGate(security.GateConfig{TokenHash: "plain"}); err == nil {
		t.Error("expected error for non-bcrypt hash")
	}
}

func BenchmarkGate_Authenticate(b *testing.B) {
	gate, _ := security.NewGate(security.GateConfig{Token: testSecret})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = gate.Authenticate("Bearer " + testSecret)
	}
}
