// Package config handles configuration for the server component:
// defaults, JSON overlay, environment variables and command-line flags,
// applied in that order with later sources winning.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/dbx"
)

// Config holds runtime settings for the SmartQ auth server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDriver / DatabaseDSN: "postgres" (pgx DSN required) or "sqlite"
//     (empty DSN means a private in-memory database).
//   - SecretKey: HMAC secret for signing tokens (HS256). No default.
//   - TokenLifetime: how long an issued token stays valid.
//   - PasswordAlgorithm / BcryptCost: how new password hashes are produced.
//   - RedisAddr / LoginMaxAttempts / LoginLockout: failed-login throttle;
//     disabled when RedisAddr is empty or LoginMaxAttempts is zero.
type Config struct {
	EndpointAddrGRPC  string        `env:"GRPC_ADDR"`
	DatabaseDriver    string        `env:"DB_DRIVER"`
	DatabaseDSN       string        `env:"DATABASE_DSN"`
	SecretKey         string        `env:"SECRET_KEY"`
	TokenLifetime     time.Duration `env:"TOKEN_LIFETIME"`
	Issuer            string        `env:"ISSUER"`
	PasswordAlgorithm string        `env:"PASSWORD_ALGORITHM"`
	BcryptCost        int           `env:"BCRYPT_COST"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	LoginMaxAttempts  int           `env:"LOGIN_MAX_ATTEMPTS"`
	LoginLockout      time.Duration `env:"LOGIN_LOCKOUT"`
	LogLevel          string        `env:"LOG_LEVEL"`
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// LoadDefaults populates Config with development defaults. The secret key is
// intentionally left empty: the server refuses to start without one.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = string(dbx.SQLite)
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenLifetime = 24 * time.Hour
	c.Issuer = "smartq"
	c.PasswordAlgorithm = AlgorithmBcrypt
	c.BcryptCost = 12
	c.RedisAddr = ""
	c.LoginMaxAttempts = 5
	c.LoginLockout = 15 * time.Minute
	c.LogLevel = "info"
}

// Dialect returns the repository dialect matching DatabaseDriver.
func (c *Config) Dialect() dbx.Dialect {
	if c.DatabaseDriver == string(dbx.Postgres) {
		return dbx.Postgres
	}
	return dbx.SQLite
}

// ThrottleEnabled reports whether failed logins should be rate limited.
func (c *Config) ThrottleEnabled() bool {
	return c.RedisAddr != "" && c.LoginMaxAttempts > 0
}

// Validate checks the settings the server cannot run without. Every returned
// error wraps common.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{common.ErrConfiguration}, args...)...))
	}

	if c.EndpointAddrGRPC == "" {
		bad("grpc address is required")
	}
	if c.SecretKey == "" {
		bad("secret key is required")
	}
	if c.TokenLifetime <= 0 {
		bad("token lifetime must be positive, got %s", c.TokenLifetime)
	}

	switch dbx.Dialect(c.DatabaseDriver) {
	case dbx.Postgres:
		if c.DatabaseDSN == "" {
			bad("database dsn is required for postgres")
		}
	case dbx.SQLite:
	default:
		bad("unknown database driver %q", c.DatabaseDriver)
	}

	switch c.PasswordAlgorithm {
	case AlgorithmBcrypt:
		if c.BcryptCost < 4 || c.BcryptCost > 31 {
			bad("bcrypt cost must be within 4..31, got %d", c.BcryptCost)
		}
	case AlgorithmArgon2id:
	default:
		bad("unknown password algorithm %q", c.PasswordAlgorithm)
	}

	if c.LoginMaxAttempts < 0 {
		bad("login max attempts must not be negative")
	}
	if c.ThrottleEnabled() && c.LoginLockout <= 0 {
		bad("login lockout must be positive when throttling is enabled")
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the SMARTQ_* environment and finally
// command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
