// Package services contains server-side business logic. This file implements
// UserService: account signup, login and token authentication.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/dbx"
	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/dmitrijs2005/smartq/internal/server/auth"
	"github.com/dmitrijs2005/smartq/internal/server/credentials"
	"github.com/dmitrijs2005/smartq/internal/server/models"
	"github.com/dmitrijs2005/smartq/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smartq/internal/server/throttle"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenEngine is the part of auth.Engine the service depends on.
type TokenEngine interface {
	Issue(subject, role string, now time.Time) (string, error)
	Verify(token string) (*auth.Claims, error)
	Lifetime() time.Duration
}

// AuthResult is what a successful signup or login returns to the caller.
// It never carries the password hash.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserName  string
	Email     string
	Role      string
}

// Deps bundles UserService collaborators. Limiter, Logger and Now are optional.
type Deps struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Hasher  credentials.Hasher
	Tokens  TokenEngine
	Limiter throttle.Limiter
	Logger  logging.Logger
	Now     func() time.Time
}

// UserService provides authentication-related operations:
//   - Signup: create an account and issue a token
//   - Login: verify credentials and issue a token
//   - Authenticate: verify a presented token
type UserService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	hasher   credentials.Hasher
	tokens   TokenEngine
	limiter  throttle.Limiter
	log      logging.Logger
	now      func() time.Time
	validate *validator.Validate

	// verified against on unknown subjects so both login failure paths
	// spend the same hashing time
	dummyHash string
}

// NewUserService wires the service. It hashes a throwaway password up front,
// so a broken hasher is reported here rather than on the first login.
func NewUserService(d Deps) (*UserService, error) {
	if d.DB == nil || d.Repos == nil || d.Hasher == nil || d.Tokens == nil {
		return nil, fmt.Errorf("%w: user service dependencies missing", common.ErrConfiguration)
	}

	dummy, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	dummyHash, err := d.Hasher.Hash(dummy)
	if err != nil {
		return nil, err
	}

	s := &UserService{
		db:        d.DB,
		repos:     d.Repos,
		hasher:    d.Hasher,
		tokens:    d.Tokens,
		limiter:   d.Limiter,
		log:       d.Logger,
		now:       d.Now,
		validate:  newValidator(),
		dummyHash: dummyHash,
	}
	if s.limiter == nil {
		s.limiter = throttle.Nop{}
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = s.log.With("module", "user_service")
	return s, nil
}

// Signup registers a new account and returns a token for it.
//
// The password is hashed first; email and username uniqueness is then checked
// inside one transaction together with the insert; a unique-index violation from storage is reported the
// same way (common.ErrorAlreadyExists, as a common.ConflictError).
func (s *UserService) Signup(ctx context.Context, userName, email, password string) (*AuthResult, error) {
	in := signupInput{UserName: normalizeUserName(userName), Email: normalizeEmail(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	// The transaction must not span hashing.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, credentials.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password: must be at most 72 bytes", common.ErrorValidation)
		}
		s.log.Error(ctx, "signup failed", "error", err)
		return nil, common.ErrorInternal
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		UserName:     in.UserName,
		PasswordHash: hash,
		CreatedAt:    now.UTC().Truncate(time.Microsecond),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return common.ConflictError{Field: "email"}
		}

		exists, err = repo.ExistsByUserName(ctx, user.UserName)
		if err != nil {
			return err
		}
		if exists {
			return common.ConflictError{Field: "username"}
		}

		_, err = repo.Create(ctx, user)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrorAlreadyExists):
		s.log.Info(ctx, "signup rejected", "reason", err.Error())
		return nil, err
	default:
		s.log.Error(ctx, "signup failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "account created", "user_id", user.ID)
	return s.issue(ctx, user, now)
}

// Login checks email/password and returns a token on success.
//
// An unknown email and a wrong password produce the same
// common.ErrorUnauthorized after the same amount of hashing work.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	in := loginInput{Email: normalizeEmail(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	subject := in.Email

	if err := s.limiter.Check(ctx, subject); err != nil {
		if errors.Is(err, common.ErrorTooManyAttempts) {
			s.log.Warn(ctx, "login throttled")
			return nil, err
		}
		s.log.Warn(ctx, "login throttle unavailable", "error", err)
	}

	user, err := s.repos.Users(s.db).GetUserByEmail(ctx, subject)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		s.hasher.Verify(password, s.dummyHash)
		s.loginFailed(ctx, subject, "unknown subject")
		return nil, common.ErrorUnauthorized
	default:
		s.log.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, subject, "password mismatch")
		return nil, common.ErrorUnauthorized
	}

	if err := s.limiter.Reset(ctx, subject); err != nil {
		s.log.Warn(ctx, "login throttle reset failed", "error", err)
	}
	s.rehash(ctx, user, password)

	s.log.Info(ctx, "login succeeded", "user_id", user.ID)
	return s.issue(ctx, user, s.now())
}

// Authenticate verifies a presented token and returns its claims. Errors
// wrap common.ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "reason", err.Error())
		return nil, err
	}
	return claims, nil
}

// --- helpers below ---

func (s *UserService) issue(ctx context.Context, user *models.User, now time.Time) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.Email, auth.RoleUser, now)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: now.Add(s.tokens.Lifetime()).Truncate(time.Second),
		UserName:  user.UserName,
		Email:     user.Email,
		Role:      auth.RoleUser,
	}, nil
}

func (s *UserService) loginFailed(ctx context.Context, subject, reason string) {
	s.log.Debug(ctx, "login rejected", "reason", reason)
	if err := s.limiter.Fail(ctx, subject); err != nil {
		s.log.Warn(ctx, "login throttle update failed", "error", err)
	}
}

// rehash upgrades a stored hash produced with outdated parameters. Failures
// are logged and otherwise ignored; the login itself already succeeded.
func (s *UserService) rehash(ctx context.Context, user *models.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "error", err)
		return
	}
	if err := s.repos.Users(s.db).UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn(ctx, "password rehash not stored", "error", err)
		return
	}
	user.PasswordHash = hash
}
