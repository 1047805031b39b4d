package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civicsense/internal/ports"
)

func newTestAuthenticator(t *testing.T) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator("test-secret", "civicsense", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}
	return a
}

func TestIssueAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.IssueToken(ports.Principal{Subject: "Asha@Example.com", Role: "reporter"})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	got, err := a.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.Subject != "asha@example.com" || got.Role != ports.RoleReporter || got.IsAdmin() {
		t.Fatalf("Authenticate() = %+v", got)
	}

	adminToken, err := a.IssueToken(ports.Principal{Subject: "ops", Name: "admin1", Role: "admin"})
	if err != nil {
		t.Fatalf("IssueToken(admin) error = %v", err)
	}
	admin, err := a.Authenticate(context.Background(), adminToken)
	if err != nil {
		t.Fatalf("Authenticate(admin) error = %v", err)
	}
	if !admin.IsAdmin() || admin.ActorLabel() != "admin1" {
		t.Fatalf("Authenticate(admin) = %+v", admin)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	a := newTestAuthenticator(t)
	valid, err := a.IssueToken(ports.Principal{Subject: "ops", Role: "admin"})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	other, err := NewJWTAuthenticator("other-secret", "civicsense", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}
	forged, err := other.IssueToken(ports.Principal{Subject: "ops", Role: "admin"})
	if err != nil {
		t.Fatalf("IssueToken(other) error = %v", err)
	}

	expiredIssuer := newTestAuthenticator(t)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.IssueToken(ports.Principal{Subject: "ops", Role: "admin"})
	if err != nil {
		t.Fatalf("IssueToken(expired) error = %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "ops", Issuer: "civicsense"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"wrong key": forged,
		"expired":   expired,
		"alg none":  unsigned,
		"truncated": valid[:len(valid)-4],
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Authenticate(context.Background(), token); !errors.Is(err, ports.ErrUnauthenticated) {
				t.Fatalf("Authenticate() error = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestIssueTokenValidation(t *testing.T) {
	a := newTestAuthenticator(t)
	if _, err := a.IssueToken(ports.Principal{Subject: "", Role: "admin"}); err == nil {
		t.Fatalf("IssueToken(empty subject) expected error")
	}
	if _, err := a.IssueToken(ports.Principal{Subject: "ops", Role: "root"}); err == nil {
		t.Fatalf("IssueToken(unknown role) expected error")
	}
	if _, err := NewJWTAuthenticator(" ", "", time.Hour); err == nil {
		t.Fatalf("NewJWTAuthenticator(empty secret) expected error")
	}
}
