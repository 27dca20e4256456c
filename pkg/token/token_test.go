package token

import (
	"errors"
	"testing"
	"time"

	"edge/pkg/models"
)

const testSecret = "test-secret-key"

var testUser = models.User{ID: 7, UUID: "9f1c6a34-0000-0000-0000-000000000000", Username: "alice"}

func newTestIssuer(t *testing.T, accessTTL, refreshTTL time.Duration) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(testSecret, accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("unexpected error creating issuer: %v", err)
	}
	return issuer
}

func TestIssue_TokensEncodeIdentityAndExpiry(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

	pair, err := issuer.Issue(testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}

	now := time.Now()
	accessExp := claimsFor(t, pair.AccessToken, "access")
	refreshExp := claimsFor(t, pair.RefreshToken, "refresh")

	if !accessExp.After(now) {
		t.Fatal("expected access token expiry to be after issuance")
	}
	if !refreshExp.After(accessExp) {
		t.Fatal("expected refresh token to outlive access token")
	}
}

// claimsFor decodes a token, checks its identity claims and returns its expiry.
func claimsFor(t *testing.T, tokenStr, wantType string) time.Time {
	t.Helper()

	claims, err := Parse(tokenStr, testSecret)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != testUser.UUID {
		t.Fatalf("expected sub claim %q, got %q", testUser.UUID, sub)
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != wantType {
		t.Fatalf("expected token_type %q, got %q", wantType, claims["token_type"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("expected numeric exp claim, got %T", claims["exp"])
	}
	return time.Unix(int64(exp), 0)
}

func TestIssue_FailsWithoutSecret(t *testing.T) {
	issuer, err := NewIssuer("", time.Hour, 2*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating issuer: %v", err)
	}

	if _, err := issuer.Issue(testUser); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestNewIssuer_RequiresRefreshLongerThanAccess(t *testing.T) {
	if _, err := NewIssuer(testSecret, time.Hour, time.Hour); err == nil {
		t.Fatal("expected error when refresh TTL equals access TTL")
	}
	if _, err := NewIssuer(testSecret, 2*time.Hour, time.Hour); err == nil {
		t.Fatal("expected error when refresh TTL is shorter than access TTL")
	}
	if _, err := NewIssuer(testSecret, 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access TTL")
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour, 2*time.Hour)

	pair, err := issuer.Issue(testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Parse(pair.AccessToken, "some-other-secret"); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour, 2*time.Hour)
	pair, err := issuer.Issue(testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Forge an issuer whose tokens are already expired.
	expired := &Issuer{secret: testSecret, accessTTL: -2 * time.Hour, refreshTTL: -time.Hour}
	expiredPair, err := expired.Issue(testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Parse(expiredPair.AccessToken, testSecret); err == nil {
		t.Fatal("expected parse to reject an expired token")
	}
	if _, err := Parse(pair.AccessToken, testSecret); err != nil {
		t.Fatalf("expected live token to parse, got %v", err)
	}
}
