package config

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	c.SecretKey = "test-secret"
	return c
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenLifetime)
	assert.Equal(t, "smartq", c.Issuer)
	assert.Equal(t, AlgorithmBcrypt, c.PasswordAlgorithm)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, 5, c.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, c.LoginLockout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, dbx.SQLite, c.Dialect())
	assert.False(t, c.ThrottleEnabled())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	c, err := load(nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 24*time.Hour, c.TokenLifetime)

	// Defaults alone are not runnable: the secret is mandatory.
	assert.ErrorIs(t, c.Validate(), common.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid defaults with secret", mutate: func(c *Config) {}},
		{name: "argon2id", mutate: func(c *Config) { c.PasswordAlgorithm = AlgorithmArgon2id; c.BcryptCost = 0 }},
		{name: "postgres with dsn", mutate: func(c *Config) { c.DatabaseDriver = "postgres"; c.DatabaseDSN = "postgres://x" }},
		{name: "throttle enabled", mutate: func(c *Config) { c.RedisAddr = "localhost:6379" }},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key is required"},
		{name: "zero lifetime", mutate: func(c *Config) { c.TokenLifetime = 0 }, wantErr: "token lifetime must be positive"},
		{name: "negative lifetime", mutate: func(c *Config) { c.TokenLifetime = -time.Second }, wantErr: "token lifetime must be positive"},
		{name: "empty address", mutate: func(c *Config) { c.EndpointAddrGRPC = "" }, wantErr: "grpc address is required"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.DatabaseDriver = "postgres" }, wantErr: "database dsn is required"},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: `unknown database driver "mysql"`},
		{name: "unknown algorithm", mutate: func(c *Config) { c.PasswordAlgorithm = "md5" }, wantErr: `unknown password algorithm "md5"`},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 3 }, wantErr: "bcrypt cost must be within 4..31"},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.BcryptCost = 32 }, wantErr: "bcrypt cost must be within 4..31"},
		{name: "negative attempts", mutate: func(c *Config) { c.LoginMaxAttempts = -1 }, wantErr: "login max attempts must not be negative"},
		{name: "throttle without lockout", mutate: func(c *Config) { c.RedisAddr = "r:6379"; c.LoginLockout = 0 }, wantErr: "login lockout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := validConfig()
	c.SecretKey = ""
	c.TokenLifetime = 0

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret key is required")
	assert.Contains(t, err.Error(), "token lifetime must be positive")
}

func TestDialect(t *testing.T) {
	c := validConfig()
	assert.Equal(t, dbx.SQLite, c.Dialect())
	c.DatabaseDriver = "postgres"
	assert.Equal(t, dbx.Postgres, c.Dialect())
}
