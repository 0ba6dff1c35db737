package jwtauth

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TokenPair is returned by login, registration and refresh endpoints.
// ExpiresIn always describes the access token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Issuer mints access and refresh tokens for a subject
type Issuer struct {
	cfg   *Config
	codec *Codec
}

// NewIssuer creates an issuer that signs through codec
func NewIssuer(cfg *Config, codec *Codec) *Issuer {
	return &Issuer{cfg: cfg, codec: codec}
}

// IssueAccessToken signs an access-kind token with the access lifetime
func (i *Issuer) IssueAccessToken(subject string, payload map[string]any) (string, error) {
	return i.issue(subject, payload, KindAccess)
}

// IssueRefreshToken signs a refresh-kind token with the refresh lifetime
func (i *Issuer) IssueRefreshToken(subject string, payload map[string]any) (string, error) {
	return i.issue(subject, payload, KindRefresh)
}

func (i *Issuer) issue(subject string, payload map[string]any, kind TokenKind) (string, error) {
	lifetime := i.cfg.accessTTL
	if kind == KindRefresh {
		lifetime = i.cfg.refreshTTL
	}

	token, err := i.codec.Sign(Claims{Subject: subject, Payload: payload, Kind: kind}, lifetime)
	if err != nil {
		return "", err
	}

	i.cfg.metrics.tokenIssued(kind)
	return token, nil
}

// IssuePair signs both tokens concurrently and reports the access token
// lifetime in seconds. A nil payload is issued as an empty map.
func (i *Issuer) IssuePair(ctx context.Context, subject string, payload map[string]any) (*TokenPair, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	var pair TokenPair
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		token, err := i.IssueAccessToken(subject, payload)
		pair.AccessToken = token
		return err
	})
	g.Go(func() error {
		token, err := i.IssueRefreshToken(subject, payload)
		pair.RefreshToken = token
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pair.ExpiresIn = ExpiresInSeconds(i.cfg.accessLifetime)
	return &pair, nil
}
