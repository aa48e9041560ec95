package auth

import (
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	userID, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.nowFn = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	issuer.nowFn = time.Now
	if _, err := issuer.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	if _, err := issuer.Parse("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
