// Package auth implements password hashing and the signed-token lifecycle:
// issue, decode, and token-kind enforcement. A token moves Issued → Valid →
// Expired; there is no revocation list, so compromise mitigation relies on
// short access lifetimes and refresh rotation.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind separates short-lived access tokens from long-lived refresh
// tokens. A refresh token must never pass an access-token check.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongTokenKind is returned when a structurally valid token carries
	// the wrong kind claim for the operation.
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// Claims is the decoded token payload. Subject and Kind are authoritative;
// Extra holds convenience data (email, admin flag) that must be re-verified
// against the persisted user record before any privilege-sensitive use.
type Claims struct {
	Subject  uuid.UUID
	Kind     TokenKind
	IssuedAt time.Time
	Expiry   time.Time
	Extra    map[string]any
}

// TokenManager mints and validates HS256-signed tokens keyed by the server
// secret, with per-kind lifetimes.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs a token of the given kind for the subject. Extra claims are
// embedded flat alongside the registered claims.
func (m *TokenManager) Issue(subject uuid.UUID, kind TokenKind, extra map[string]any) (string, error) {
	ttl := m.accessTTL
	if kind == TokenKindRefresh {
		ttl = m.refreshTTL
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject.String(),
		"type": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// IssuePair mints a fresh access/refresh pair. The access token carries the
// email as a convenience claim; the refresh token carries nothing extra.
func (m *TokenManager) IssuePair(subject uuid.UUID, email string) (access, refresh string, err error) {
	access, err = m.Issue(subject, TokenKindAccess, map[string]any{"email": email})
	if err != nil {
		return "", "", err
	}
	refresh, err = m.Issue(subject, TokenKindRefresh, nil)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Decode verifies the signature and expiry and returns the parsed claims.
// Any verification failure surfaces as ErrInvalidToken.
func (m *TokenManager) Decode(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	subject, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	kind, _ := mapClaims["type"].(string)
	if kind != string(TokenKindAccess) && kind != string(TokenKindRefresh) {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject: subject,
		Kind:    TokenKind(kind),
		Extra:   map[string]any{},
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.Expiry = exp.Time
	}
	for k, v := range mapClaims {
		switch k {
		case "sub", "type", "iat", "exp":
		default:
			claims.Extra[k] = v
		}
	}
	return claims, nil
}

// RequireKind rejects tokens of the wrong kind, preventing a refresh token
// from authorising API calls and an access token from minting new pairs.
func RequireKind(claims *Claims, kind TokenKind) error {
	if claims.Kind != kind {
		return ErrWrongTokenKind
	}
	return nil
}
