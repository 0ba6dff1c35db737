package jwtauth

import (
	"fmt"
	"log/slog"
	"time"
)

// minSecretLength is the minimum HS256 secret size (256 bits)
const minSecretLength = 32

// SigningConfig is the process-wide signing material, loaded once at start
type SigningConfig struct {
	Secret          []byte
	AccessLifetime  string // e.g. "15m"
	RefreshLifetime string // e.g. "7d"
}

// Config holds immutable configuration shared by the codec, issuer and gates
type Config struct {
	secret         []byte
	accessLifetime string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	now            func() time.Time
	logger         *slog.Logger
	metrics        *Metrics
}

// ConfigOption is a functional option for configuring the package
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		now: time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 {
		return nil, NewValidationError(ErrConfigError, "signing configuration is required (use WithSigning)", nil)
	}

	return cfg, nil
}

// WithSigning sets the secret and token lifetimes
func WithSigning(sc SigningConfig) ConfigOption {
	return func(c *Config) error {
		if len(sc.Secret) < minSecretLength {
			return fmt.Errorf("secret must be at least %d bytes (256 bits), got %d bytes", minSecretLength, len(sc.Secret))
		}

		accessTTL, err := ParseLifetime(sc.AccessLifetime)
		if err != nil {
			return fmt.Errorf("access lifetime: %w", err)
		}
		refreshTTL, err := ParseLifetime(sc.RefreshLifetime)
		if err != nil {
			return fmt.Errorf("refresh lifetime: %w", err)
		}
		if accessTTL <= 0 || refreshTTL <= 0 {
			return fmt.Errorf("token lifetimes must be positive, got access=%v refresh=%v", accessTTL, refreshTTL)
		}

		c.secret = append([]byte(nil), sc.Secret...)
		c.accessLifetime = sc.AccessLifetime
		c.accessTTL = accessTTL
		c.refreshTTL = refreshTTL
		return nil
	}
}

// WithClock replaces time.Now for issuance and expiry checks
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics enables gate and issuance counters
func WithMetrics(m *Metrics) ConfigOption {
	return func(c *Config) error {
		c.metrics = m
		return nil
	}
}

func (c *Config) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *Config) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// AccessLifetime returns the access lifetime exactly as configured
func (c *Config) AccessLifetime() string {
	return c.accessLifetime
}

func (c *Config) Logger() *slog.Logger {
	return c.logger
}

func (c *Config) Now() time.Time {
	return c.now()
}
