package jwtauth

import (
	"context"
	"fmt"
	"time"
)

const refreshStage = "refresh"

// RefreshFlow exchanges a valid refresh token for a new token pair.
// It is stateless: old refresh tokens stay valid until they expire.
type RefreshFlow struct {
	cfg    *Config
	codec  *Codec
	issuer *Issuer
}

// NewRefreshFlow wires the flow to a codec and issuer sharing cfg
func NewRefreshFlow(cfg *Config, codec *Codec, issuer *Issuer) *RefreshFlow {
	return &RefreshFlow{cfg: cfg, codec: codec, issuer: issuer}
}

// Refresh verifies refreshToken and issues a new pair for the same subject,
// carrying the payload forward unchanged
func (f *RefreshFlow) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	startTime := time.Now()
	requestID, _ := GetRequestID(ctx)

	claims, err := f.codec.Verify(refreshToken)
	if err == nil && claims.Kind != KindRefresh {
		err = NewValidationError(ErrWrongTokenKind, msgInvalidRefreshToken, fmt.Errorf("got %s token, want %s", claims.Kind, KindRefresh))
	}
	if err != nil {
		rejected := refreshError(err)
		logSecurityEvent(f.cfg.logger, newFailureEvent(refreshStage, requestID, refreshToken, rejected, time.Since(startTime)))
		f.cfg.metrics.gateRejected(rejected)
		return nil, rejected
	}

	pair, err := f.issuer.IssuePair(ctx, claims.Subject, claims.Payload)
	if err != nil {
		return nil, err
	}

	logSecurityEvent(f.cfg.logger, newSuccessEvent(refreshStage, requestID, refreshToken, claims, time.Since(startTime)))
	f.cfg.metrics.gateAllowed()
	return pair, nil
}

// refreshError maps a verification failure to the refresh flow's client message.
// Only expiry is distinguished; everything else is an invalid refresh token.
func refreshError(err error) *ValidationError {
	code := CodeOf(err)
	if code == ErrExpiredToken {
		return NewValidationError(ErrExpiredToken, msgExpiredRefreshToken, err)
	}
	if code == "" {
		code = ErrMalformedToken
	}
	return NewValidationError(code, msgInvalidRefreshToken, err)
}
