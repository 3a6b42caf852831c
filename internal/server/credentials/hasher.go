// Package credentials hashes passwords for storage and checks login attempts
// against stored hashes.
//
// Two algorithms are supported: bcrypt (default) and argon2id. Hashes are
// self-describing, so a Gateway verifies either format regardless of which
// algorithm it is configured to produce.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smartq/internal/common"
)

// ErrPasswordTooLong is returned by bcrypt hashing for plaintexts over 72
// bytes. bcrypt would otherwise silently ignore the tail.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher hashes plaintext passwords and verifies plaintexts against hashes.
//
// Verify never returns an error: a mismatch, an unknown format and a
// corrupted hash all yield false.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	NeedsRehash(hash string) bool
}

type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config selects the algorithm for new hashes and its cost parameters.
// Zero values are replaced by defaults.
type Config struct {
	Algorithm  Algorithm
	BcryptCost int
	Argon2     Argon2Params
}

func (c *Config) applyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	c.Argon2.applyDefaults()
}

// Gateway is the configured Hasher. New hashes use the configured algorithm;
// verification dispatches on the stored hash's prefix.
type Gateway struct {
	algorithm Algorithm
	bcrypt    *BcryptHasher
	argon2    *Argon2Hasher
}

// NewHasher builds a Gateway from cfg. Invalid parameters yield an error
// wrapping common.ErrConfiguration.
func NewHasher(cfg Config) (*Gateway, error) {
	cfg.applyDefaults()

	b, err := NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	a, err := NewArgon2Hasher(cfg.Argon2)
	if err != nil {
		return nil, err
	}

	switch cfg.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: unsupported password algorithm %q", common.ErrConfiguration, cfg.Algorithm)
	}

	return &Gateway{algorithm: cfg.Algorithm, bcrypt: b, argon2: a}, nil
}

func (g *Gateway) Algorithm() Algorithm { return g.algorithm }

func (g *Gateway) Hash(plaintext string) (string, error) {
	if g.algorithm == AlgorithmArgon2id {
		return g.argon2.Hash(plaintext)
	}
	return g.bcrypt.Hash(plaintext)
}

func (g *Gateway) Verify(plaintext, hash string) bool {
	switch algorithmOf(hash) {
	case AlgorithmBcrypt:
		return g.bcrypt.Verify(plaintext, hash)
	case AlgorithmArgon2id:
		return g.argon2.Verify(plaintext, hash)
	default:
		return false
	}
}

// NeedsRehash reports whether hash was produced by another algorithm or with
// parameters other than the configured ones.
func (g *Gateway) NeedsRehash(hash string) bool {
	alg := algorithmOf(hash)
	if alg == "" {
		return false
	}
	if alg != g.algorithm {
		return true
	}
	if alg == AlgorithmArgon2id {
		return g.argon2.NeedsRehash(hash)
	}
	return g.bcrypt.NeedsRehash(hash)
}

func algorithmOf(hash string) Algorithm {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return AlgorithmBcrypt
	case strings.HasPrefix(hash, "$argon2id$"):
		return AlgorithmArgon2id
	default:
		return ""
	}
}
