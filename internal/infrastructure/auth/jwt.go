package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civicsense/internal/ports"
)

// Claims are the bearer token claims. Subject is the reporter email or admin username.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator issues and verifies HS256 bearer tokens.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.Authenticator = (*JWTAuthenticator)(nil)

func NewJWTAuthenticator(secret string, issuer string, ttl time.Duration) (*JWTAuthenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTAuthenticator{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken signs a token for principal. Reporter subjects are lower-cased to match stored contact keys.
func (a *JWTAuthenticator) IssueToken(principal ports.Principal) (string, error) {
	subject := strings.TrimSpace(principal.Subject)
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	role := strings.ToLower(strings.TrimSpace(principal.Role))
	switch role {
	case ports.RoleAdmin:
	case ports.RoleReporter:
		subject = strings.ToLower(subject)
	default:
		return "", fmt.Errorf("unknown role %q", principal.Role)
	}

	now := a.now()
	claims := &Claims{
		Name: strings.TrimSpace(principal.Name),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, raw string) (ports.Principal, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return ports.Principal{}, err
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ports.Principal{}, ports.ErrUnauthenticated
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return ports.Principal{}, fmt.Errorf("%w: invalid token", ports.ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return ports.Principal{}, fmt.Errorf("%w: token has no subject", ports.ErrUnauthenticated)
	}
	if claims.Role != ports.RoleAdmin && claims.Role != ports.RoleReporter {
		return ports.Principal{}, fmt.Errorf("%w: unknown role %q", ports.ErrUnauthenticated, claims.Role)
	}

	return ports.Principal{
		Subject: claims.Subject,
		Name:    claims.Name,
		Role:    claims.Role,
	}, nil
}
