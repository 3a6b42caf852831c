package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/smartq/internal/flagx"
	"github.com/dmitrijs2005/smartq/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations accept
// both "24h" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC  string         `json:"endpoint_addr_grpc"`
	DatabaseDriver    string         `json:"database_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	TokenLifetime     timex.Duration `json:"token_lifetime"`
	Issuer            string         `json:"issuer"`
	PasswordAlgorithm string         `json:"password_algorithm"`
	BcryptCost        int            `json:"bcrypt_cost"`
	RedisAddr         string         `json:"redis_addr"`
	LoginMaxAttempts  int            `json:"login_max_attempts"`
	LoginLockout      timex.Duration `json:"login_lockout"`
	LogLevel          string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:  c.EndpointAddrGRPC,
		DatabaseDriver:    c.DatabaseDriver,
		DatabaseDSN:       c.DatabaseDSN,
		SecretKey:         c.SecretKey,
		TokenLifetime:     timex.Duration{Duration: c.TokenLifetime},
		Issuer:            c.Issuer,
		PasswordAlgorithm: c.PasswordAlgorithm,
		BcryptCost:        c.BcryptCost,
		RedisAddr:         c.RedisAddr,
		LoginMaxAttempts:  c.LoginMaxAttempts,
		LoginLockout:      timex.Duration{Duration: c.LoginLockout},
		LogLevel:          c.LogLevel,
	}
}

// parseJson overlays values from the JSON file named by -c / -config (or
// SMARTQ_CONFIG). Keys missing from the file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args, EnvPrefix+"CONFIG")
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Start from the current values so absent keys are preserved.
	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenLifetime = c.TokenLifetime.Duration
	config.Issuer = c.Issuer
	config.PasswordAlgorithm = c.PasswordAlgorithm
	config.BcryptCost = c.BcryptCost
	config.RedisAddr = c.RedisAddr
	config.LoginMaxAttempts = c.LoginMaxAttempts
	config.LoginLockout = c.LoginLockout.Duration
	config.LogLevel = c.LogLevel
	return nil
}
