// Package config loads cafe-api configuration from YAML and ENV with a fixed priority.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config is the root configuration.
// Source priority:
//  1. explicit path passed to MustLoad/Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml in the working directory;
//  4. environment only.
type Config struct {
	Env             string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP            HTTPConfig     `yaml:"http"`
	JWT             JWTConfig      `yaml:"jwt"`
	Storage         StorageConfig  `yaml:"storage"`
	Security        SecurityConfig `yaml:"security"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig is the REST listener.
type HTTPConfig struct {
	Host   string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Prefix string `yaml:"prefix" env:"API_PREFIX" env-default:"/api/v1"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// JWTConfig holds the signing secret and token lifetimes ("15m", "7d", "3600", "1h30m").
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	AccessExpiration  string `yaml:"access_expiration" env:"JWT_ACCESS_EXPIRATION" env-default:"15m"`
	RefreshExpiration string `yaml:"refresh_expiration" env:"JWT_REFRESH_EXPIRATION" env-default:"7d"`
}

// StorageConfig selects the owner/cafe store.
type StorageConfig struct {
	Kind     string `yaml:"kind" env:"STORAGE" env-default:"memory"`
	MongoURI string `yaml:"mongodb_uri" env:"MONGODB_URI"`
}

// SecurityConfig holds password hashing parameters.
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// Signing returns the process-wide signing material for jwtauth.
func (c *Config) Signing() jwtauth.SigningConfig {
	return jwtauth.SigningConfig{
		Secret:          []byte(c.JWT.Secret),
		AccessLifetime:  c.JWT.AccessExpiration,
		RefreshLifetime: c.JWT.RefreshExpiration,
	}
}

// MustLoad wraps Load and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads configuration by priority: explicit path, CONFIG_PATH, ./local.yaml, ENV.
// ENV variables are overlaid on top of any file that was read.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config %q: %w", p, err)
		}

		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks values that cleanenv cannot.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}

	if _, err := jwtauth.ParseLifetime(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("jwt.access_expiration: %w", err)
	}

	if _, err := jwtauth.ParseLifetime(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("jwt.refresh_expiration: %w", err)
	}

	switch c.Storage.Kind {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongodb_uri is required when storage.kind is %q", StorageMongo)
		}
	default:
		return fmt.Errorf("storage.kind must be %q or %q, got %q", StorageMemory, StorageMongo, c.Storage.Kind)
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0")
	}

	return nil
}
