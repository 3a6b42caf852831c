// Package server initializes and runs the SmartQ auth server.
// It opens and migrates storage, builds the credential, token and throttle
// components from config, and serves the gRPC API until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/dmitrijs2005/smartq/internal/server/auth"
	"github.com/dmitrijs2005/smartq/internal/server/config"
	"github.com/dmitrijs2005/smartq/internal/server/credentials"
	"github.com/dmitrijs2005/smartq/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smartq/internal/server/services"
	"github.com/dmitrijs2005/smartq/internal/server/throttle"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/smartq/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	userService *services.UserService
}

// NewApp validates c and wires every component. A configuration error is
// returned before any storage is touched.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if logOut == nil {
		logOut = os.Stdout
	}
	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	hasher, err := credentials.NewHasher(credentials.Config{
		Algorithm:  credentials.Algorithm(c.PasswordAlgorithm),
		BcryptCost: c.BcryptCost,
	})
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	engine, err := auth.NewEngine(auth.Config{
		Secret:   []byte(c.SecretKey),
		Lifetime: c.TokenLifetime,
		Issuer:   c.Issuer,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("token engine init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.Dialect(), c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(c.Dialect(), logger)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var limiter throttle.Limiter = throttle.Nop{}
	if c.ThrottleEnabled() {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		limiter = throttle.NewRedisLimiter(app.redis, c.LoginMaxAttempts, c.LoginLockout)
	}

	us, err := services.NewUserService(services.Deps{
		DB:      db,
		Repos:   rm,
		Hasher:  hasher,
		Tokens:  engine,
		Limiter: limiter,
		Logger:  logger,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.userService = us

	logger.Info(ctx, "App initialized",
		"db_driver", c.DatabaseDriver,
		"password_algorithm", c.PasswordAlgorithm,
		"token_lifetime", c.TokenLifetime.String(),
		"throttle", c.ThrottleEnabled(),
	)

	return app, nil
}

// Close releases storage and cache connections.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return errors.Join(runErr, app.Close())
}
