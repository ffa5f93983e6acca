package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id cost settings recorded in every stored hash.
type PasswordParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultPasswordParams is what new account passwords are hashed with.
var DefaultPasswordParams = PasswordParams{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

// Stored hashes above this memory cost are refused rather than computed.
const maxHashMemory = 1 << 20

var (
	ErrPasswordMismatch = errors.New("invalid password")
	ErrMalformedHash    = errors.New("malformed password hash")
)

// HashPassword encodes password as
// argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>.
func HashPassword(password string) (string, error) {
	return DefaultPasswordParams.Hash(password)
}

func (p PasswordParams) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

type storedHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func parseStoredHash(encoded string) (*storedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return nil, fmt.Errorf("%w: unknown format", ErrMalformedHash)
	}
	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[1])
	}

	h := &storedHash{}
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return nil, fmt.Errorf("%w: bad parameters", ErrMalformedHash)
	}
	if h.params.Time == 0 || h.params.Threads == 0 || h.params.Memory == 0 || h.params.Memory > maxHashMemory {
		return nil, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[3]); err != nil {
		return nil, fmt.Errorf("%w: salt encoding", ErrMalformedHash)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(h.key) == 0 {
		return nil, fmt.Errorf("%w: key encoding", ErrMalformedHash)
	}
	h.params.KeyLen = uint32(len(h.key))
	h.params.SaltLen = len(h.salt)
	return h, nil
}

// VerifyPassword checks password against a stored hash. It returns
// ErrPasswordMismatch for a wrong password and ErrMalformedHash when the
// stored value cannot be read.
func VerifyPassword(encoded, password string) error {
	h, err := parseStoredHash(encoded)
	if err != nil {
		return err
	}
	p := h.params
	calculated := argon2.IDKey([]byte(password), h.salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	if subtle.ConstantTimeCompare(h.key, calculated) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encoded was produced with weaker settings than
// DefaultPasswordParams.
func NeedsRehash(encoded string) bool {
	h, err := parseStoredHash(encoded)
	if err != nil {
		return true
	}
	d := DefaultPasswordParams
	return h.params.Time < d.Time || h.params.Memory < d.Memory || h.params.KeyLen < d.KeyLen || h.params.SaltLen < d.SaltLen
}
