package auth

import (
	"testing"

	"github.com/ratul43/book-courier-server/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, "u-1", "reader@example.com", "librarian")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "reader@example.com" || claims.Role != "librarian" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "right"}, "u-1", "a@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(&config.JWTConfig{Secret: "wrong"}, token); err == nil {
		t.Error("expected parse failure with wrong secret")
	}
}

func TestConsistentHashRing(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	// 同一个 key 必须稳定落在同一个节点
	first := ring.GetNode("some-token")
	for i := 0; i < 10; i++ {
		if got := ring.GetNode("some-token"); got != first {
			t.Fatalf("node changed: %s -> %s", first, got)
		}
	}

	// 空环兜底
	empty := NewConsistentHashRing(nil, 0)
	if empty.GetNode("x") == "" {
		t.Error("default node expected for empty ring")
	}
}
