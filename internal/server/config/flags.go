package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/smartq/internal/flagx"
)

var knownFlags = []string{"-a", "-driver", "-d", "-s", "-t", "-i", "-p", "-b", "-r", "-m", "-l", "-log-level"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string          gRPC bind address (e.g. ":50051")
//	-driver string     database driver: postgres | sqlite
//	-d string          database DSN
//	-s string          token signing secret
//	-t int             token lifetime, minutes
//	-i string          token issuer
//	-p string          password algorithm: bcrypt | argon2id
//	-b int             bcrypt cost
//	-r string          redis address for the login throttle
//	-m int             failed logins allowed per lockout window
//	-l int             lockout window, minutes
//	-log-level string  debug | info | warn | error
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	lifetime := fs.Int("t", int(config.TokenLifetime.Minutes()), "token lifetime (in minutes)")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.StringVar(&config.PasswordAlgorithm, "p", config.PasswordAlgorithm, "password algorithm")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.IntVar(&config.LoginMaxAttempts, "m", config.LoginMaxAttempts, "max failed logins per window")
	lockout := fs.Int("l", int(config.LoginLockout.Minutes()), "login lockout (in minutes)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// Minutes only override when the flag was given, so sub-minute values
	// from other sources survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenLifetime = time.Duration(*lifetime) * time.Minute
		case "l":
			config.LoginLockout = time.Duration(*lockout) * time.Minute
		}
	})
	return nil
}
