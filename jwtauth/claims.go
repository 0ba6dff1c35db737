package jwtauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Valid reports whether k is one of the known kinds
func (k TokenKind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims represents the decoded content of a verified token
type Claims struct {
	Subject   string         // Principal identifier (sub claim)
	Payload   map[string]any // Caller-supplied data embedded at issuance (data claim)
	Kind      TokenKind      // access or refresh (type claim)
	IssuedAt  time.Time      // Issue time (iat claim)
	ExpiresAt time.Time      // Expiration time (exp claim)
	NotBefore time.Time      // Not-before time (nbf claim), zero when absent
}

// tokenClaims is the wire form of Claims inside the JWT
type tokenClaims struct {
	Data map[string]any `json:"data"`
	Type TokenKind      `json:"type"`
	jwt.RegisteredClaims
}

func (tc *tokenClaims) toClaims() *Claims {
	claims := &Claims{
		Subject: tc.Subject,
		Payload: tc.Data,
		Kind:    tc.Type,
	}
	if claims.Payload == nil {
		claims.Payload = map[string]any{}
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	if tc.NotBefore != nil {
		claims.NotBefore = tc.NotBefore.Time
	}
	return claims
}
