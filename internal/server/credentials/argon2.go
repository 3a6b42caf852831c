package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/smartq/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2Params are the argon2id cost parameters. Defaults follow the OWASP
// recommendation: time=1, memory=64 MiB, threads=4.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

func (p *Argon2Params) applyDefaults() {
	if p.Time == 0 {
		p.Time = 1
	}
	if p.Memory == 0 {
		p.Memory = 64 * 1024
	}
	if p.Threads == 0 {
		p.Threads = 4
	}
	if p.KeyLen == 0 {
		p.KeyLen = 32
	}
	if p.SaltLen == 0 {
		p.SaltLen = 16
	}
}

// Argon2Hasher implements Hasher using argon2id with PHC-encoded output:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(p Argon2Params) (*Argon2Hasher, error) {
	p.applyDefaults()
	if p.KeyLen < 16 || p.SaltLen < 8 {
		return nil, fmt.Errorf("%w: argon2id key/salt too short", common.ErrConfiguration)
	}
	return &Argon2Hasher{params: p}, nil
}

func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: argon2id salt: %v", common.ErrConfiguration, err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(plaintext, hash string) bool {
	phc, ok := parsePHC(hash)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plaintext), phc.salt, phc.params.Time, phc.params.Memory, phc.params.Threads, uint32(len(phc.key)))
	return subtle.ConstantTimeCompare(key, phc.key) == 1
}

func (h *Argon2Hasher) NeedsRehash(hash string) bool {
	phc, ok := parsePHC(hash)
	if !ok {
		return false
	}
	return phc.params.Memory < h.params.Memory ||
		phc.params.Time < h.params.Time ||
		phc.params.Threads < h.params.Threads ||
		uint32(len(phc.key)) != h.params.KeyLen
}

type phcHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

// upper bound for memory read from a stored hash (4 GiB in KiB)
const maxArgon2Memory = 4 * 1024 * 1024

func parsePHC(encoded string) (*phcHash, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, false
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, false
	}
	if p.Time == 0 || p.Threads == 0 || p.Memory == 0 || p.Memory > maxArgon2Memory {
		return nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, false
	}

	return &phcHash{params: p, salt: salt, key: key}, true
}
