package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies compact HS256 tokens. It knows nothing about HTTP,
// so every place that checks a token shares the same signature and expiry rules.
type Codec struct {
	cfg *Config
}

// NewCodec creates a codec bound to the configured secret and clock
func NewCodec(cfg *Config) *Codec {
	return &Codec{cfg: cfg}
}

// Sign produces a signed token embedding subject, payload and kind. The issue
// time comes from the configured clock, truncated to whole seconds, and the
// expiry is issue time + lifetime.
func (c *Codec) Sign(claims Claims, lifetime time.Duration) (string, error) {
	if !claims.Kind.Valid() {
		return "", NewValidationError(ErrSigningFailed, fmt.Sprintf("unknown token kind %q", claims.Kind), nil)
	}

	payload := claims.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	issuedAt := c.cfg.Now().Truncate(time.Second)
	wire := &tokenClaims{
		Data: payload,
		Type: claims.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wire)
	signed, err := token.SignedString(c.cfg.secret)
	if err != nil {
		return "", NewValidationError(ErrSigningFailed, "failed to sign token", err)
	}
	return signed, nil
}

// Verify parses tokenString, checks its signature against the configured
// secret and its validity window against the configured clock.
// Failures are *ValidationError with ErrMalformedToken, ErrExpiredToken or ErrNotYetValid.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	wire := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, wire,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.cfg.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, NewValidationError(ErrMalformedToken, "malformed token", err)
	}
	if !token.Valid {
		return nil, NewValidationError(ErrMalformedToken, "token is invalid", nil)
	}

	if wire.Subject == "" {
		return nil, NewValidationError(ErrMalformedToken, "missing subject", nil)
	}
	if !wire.Type.Valid() {
		return nil, NewValidationError(ErrMalformedToken, fmt.Sprintf("unknown token type %q", wire.Type), nil)
	}
	if wire.ExpiresAt == nil {
		return nil, NewValidationError(ErrMalformedToken, "missing expiration", nil)
	}

	claims := wire.toClaims()
	if err := c.validateTimes(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// validateTimes rejects tokens at or past their expiry and tokens whose
// not-before time is still in the future
func (c *Codec) validateTimes(claims *Claims) error {
	now := c.cfg.Now()

	if !now.Before(claims.ExpiresAt) {
		return NewValidationError(
			ErrExpiredToken,
			fmt.Sprintf("token expired at %v", claims.ExpiresAt),
			nil,
		)
	}

	if !claims.NotBefore.IsZero() && now.Before(claims.NotBefore) {
		return NewValidationError(
			ErrNotYetValid,
			fmt.Sprintf("token not valid until %v", claims.NotBefore),
			nil,
		)
	}

	return nil
}
