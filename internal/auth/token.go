package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "memberauth"

// Claims represents JWT claims issued for an authenticated identity.
type Claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	return &TokenIssuer{secret: []byte(secret), issuer: defaultIssuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for identity. Only authenticated identities are accepted.
func (t *TokenIssuer) Issue(identity AuthenticatedIdentity) (string, time.Time, error) {
	if !identity.Authenticated || identity.Identifier == "" {
		return "", time.Time{}, fmt.Errorf("%w: identity is not authenticated", ErrInvalidInput)
	}
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	claims := Claims{
		Authorities: identity.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   identity.Identifier,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature and registered claims of token.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("subject missing")
	}
	return claims, nil
}

// TokenProvider authenticates bearer tokens minted by a TokenIssuer.
type TokenProvider struct {
	issuer *TokenIssuer
}

// NewTokenProvider wraps issuer.
func NewTokenProvider(issuer *TokenIssuer) (*TokenProvider, error) {
	if issuer == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	return &TokenProvider{issuer: issuer}, nil
}

func (p *TokenProvider) Supports(kind CredentialKind) bool {
	return kind == CredentialBearer
}

// Authenticate rebuilds the identity carried by token. Invalid tokens are credential mismatches.
func (p *TokenProvider) Authenticate(_ context.Context, token string) (AuthenticatedIdentity, error) {
	claims, err := p.issuer.Parse(token)
	if err != nil {
		return AuthenticatedIdentity{}, newFailure(FailureCredentialMismatch, err)
	}
	return AuthenticatedIdentity{
		Identifier:    claims.Subject,
		Authorities:   dedupeRoles(claims.Authorities),
		Authenticated: true,
	}, nil
}
