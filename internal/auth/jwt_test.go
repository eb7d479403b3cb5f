package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/contactly/contacthub/internal/auth"
)

func newTestManager(accessTTL time.Duration) *auth.Manager {
	return auth.NewManager("test-secret-key", accessTTL, 48*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(20 * time.Minute)

	raw, err := m.IssueAccessToken("jane", 42)

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.Subject != "jane" {
		t.Fatalf("got sub %q, want %q", claims.Subject, "jane")
	}

	if claims.ID != 42 {
		t.Fatalf("got id %d, want 42", claims.ID)
	}
}

func TestAccessTokenExpires(t *testing.T) {
	// negative TTL: the token is already past its expiry at validation time
	m := newTestManager(-1 * time.Minute)

	raw, err := m.IssueAccessToken("jane", 42)

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m := newTestManager(20 * time.Minute)

	raw, err := m.IssueAccessToken("jane", 42)

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// flip a character in the signature segment
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", raw)
	}

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.VerifyAccessToken(tampered); err == nil {
		t.Fatalf("expected tampered token to fail validation")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager(20 * time.Minute)
	other := auth.NewManager("a-different-secret", 20*time.Minute, 48*time.Hour)

	raw, err := other.IssueAccessToken("jane", 42)

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	m := newTestManager(20 * time.Minute)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.VerifyAccessToken(raw); err == nil {
			t.Fatalf("expected malformed token %q to fail", raw)
		}
	}
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	m := newTestManager(20 * time.Minute)

	verifyToken, err := m.IssueVerificationToken(7, "John")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(verifyToken); err == nil {
		t.Fatalf("verification token must not pass as an access token")
	}

	accessToken, err := m.IssueAccessToken("jane", 42)

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := m.VerifyVerificationToken(accessToken); err == nil {
		t.Fatalf("access token must not pass as a verification token")
	}
}

func TestVerificationTokenRoundTrip(t *testing.T) {
	m := newTestManager(20 * time.Minute)

	raw, err := m.IssueVerificationToken(7, "John")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := m.VerifyVerificationToken(raw)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.ID != 7 || claims.Subject != "John" {
		t.Fatalf("got id=%d sub=%q, want id=7 sub=John", claims.ID, claims.Subject)
	}
}
