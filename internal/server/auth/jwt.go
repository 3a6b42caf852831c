// Package auth issues and verifies the signed session tokens (HS256 JWTs)
// that prove a caller's identity after signup or login.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrConfiguration        = common.ErrConfiguration
	ErrTokenExpired         = common.ErrTokenExpired
	ErrTokenMalformed       = common.ErrTokenMalformed
	ErrTokenSignature       = common.ErrTokenSignature
	ErrUnsupportedAlgorithm = common.ErrUnsupportedAlgorithm

	// ErrEmptyClaim is returned by Issue for an empty subject or role.
	ErrEmptyClaim = errors.New("token subject and role are required")
)

// RoleUser is the only role ever embedded in issued tokens.
const RoleUser = common.RoleUser

// Claims is the token payload: sub, role, iat, exp (and iss when configured).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds the Token Engine settings. Secret and Lifetime are required.
type Config struct {
	Secret   []byte
	Lifetime time.Duration
	Issuer   string

	// Now defaults to time.Now. Tests inject a fixed clock.
	Now    func() time.Time
	Logger logging.Logger
}

// Engine issues and verifies tokens. It is immutable after construction and
// safe for concurrent use.
type Engine struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
	log      logging.Logger
}

// NewEngine validates cfg and returns an Engine. An empty secret or a
// non-positive lifetime yields an error wrapping ErrConfiguration.
func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: token secret is empty", ErrConfiguration)
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("%w: token lifetime must be positive, got %s", ErrConfiguration, cfg.Lifetime)
	}

	e := &Engine{
		secret:   append([]byte(nil), cfg.Secret...),
		lifetime: cfg.Lifetime,
		issuer:   cfg.Issuer,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = logging.Nop{}
	}
	return e, nil
}

func (e *Engine) Lifetime() time.Duration { return e.lifetime }

// Issue signs a token for subject with the given role, valid from now for the
// configured lifetime. Timestamps have second precision.
func (e *Engine) Issue(subject, role string, now time.Time) (string, error) {
	if e == nil || len(e.secret) == 0 || e.lifetime <= 0 {
		return "", fmt.Errorf("%w: token engine is not configured", ErrConfiguration)
	}
	if subject == "" || role == "" {
		return "", ErrEmptyClaim
	}

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    e.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.lifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", ErrConfiguration, err)
	}
	return token, nil
}

// Verify checks token against the engine's clock.
func (e *Engine) Verify(token string) (*Claims, error) {
	return e.VerifyAt(token, e.now())
}

// VerifyAt checks token at the given instant and returns its claims.
//
// Checks run in a fixed order: structure, header algorithm, signature, then
// claims and expiry. Any change to header or payload therefore surfaces as
// ErrTokenSignature rather than a decoding error. On error claims are nil.
func (e *Engine) VerifyAt(token string, now time.Time) (*Claims, error) {
	if e == nil || len(e.secret) == 0 {
		return nil, fmt.Errorf("%w: token engine is not configured", ErrConfiguration)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	rawHeader, err := parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return nil, ErrTokenMalformed
	}
	if header.Alg != jwt.SigningMethodHS256.Alg() {
		return nil, ErrUnsupportedAlgorithm
	}

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, e.secret); err != nil {
		return nil, ErrTokenSignature
	}

	claims := &Claims{}
	_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return e.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" || claims.Role == "" || claims.IssuedAt == nil {
		return nil, ErrTokenMalformed
	}
	if e.issuer != "" && claims.Issuer != e.issuer {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Subject verifies token and returns its subject claim.
func (e *Engine) Subject(token string) (string, error) {
	c, err := e.Verify(token)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// Role verifies token and returns its role claim.
func (e *Engine) Role(token string) (string, error) {
	c, err := e.Verify(token)
	if err != nil {
		return "", err
	}
	return c.Role, nil
}

// Valid reports whether token verifies right now. The failure kind is only
// logged at debug level.
func (e *Engine) Valid(token string) bool {
	if _, err := e.Verify(token); err != nil {
		e.log.Debug(context.Background(), "token rejected", "reason", err.Error())
		return false
	}
	return true
}
