// Package security holds the password hashing and token signing primitives
// used by the authentication services.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/pomodoro-hub/auth-service/internal/pkg/metrics"
)

// Scheme selects the adaptive hash applied after peppering.
type Scheme string

const (
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeArgon2id Scheme = "argon2id"
)

// Pepper derivation parameters. Changing any of them invalidates every stored hash.
const (
	pepperTime    uint32 = 1
	pepperMemory  uint32 = 16 * 1024
	pepperThreads uint8  = 1
	pepperKeyLen  uint32 = 32

	minPepperLen = 8
	argon2Prefix = "$argon2id$"
)

var (
	ErrWeakPepper     = errors.New("pepper must be at least 8 bytes")
	ErrUnknownScheme  = errors.New("unknown hashing scheme")
	ErrInvalidPHC     = errors.New("invalid argon2id hash encoding")
	ErrArgon2Settings = errors.New("invalid argon2id parameters")
)

// Argon2Params tunes the argon2id scheme.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are used when HasherOptions.Argon2 is left zero.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HasherOptions configures a Hasher. BcryptCost of zero means bcrypt.DefaultCost.
type HasherOptions struct {
	Scheme     Scheme
	Pepper     string
	BcryptCost int
	Argon2     Argon2Params
}

// Hasher implements ports.SecretHasher: every secret is first peppered with a
// deterministic keyed argon2id derivation and the result is then stored
// through the configured randomly salted adaptive scheme.
type Hasher struct {
	scheme Scheme
	pepper []byte
	cost   int
	argon  Argon2Params
}

func NewHasher(opts HasherOptions) (*Hasher, error) {
	if len(opts.Pepper) < minPepperLen {
		return nil, ErrWeakPepper
	}

	h := &Hasher{
		scheme: opts.Scheme,
		pepper: []byte(opts.Pepper),
		cost:   opts.BcryptCost,
		argon:  opts.Argon2,
	}

	switch opts.Scheme {
	case SchemeBcrypt:
		if h.cost == 0 {
			h.cost = bcrypt.DefaultCost
		}
		if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", h.cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case SchemeArgon2id:
		if h.argon == (Argon2Params{}) {
			h.argon = DefaultArgon2Params
		}
		if h.argon.Memory < 8*1024 || h.argon.Time < 1 || h.argon.Parallelism < 1 ||
			h.argon.SaltLength < 16 || h.argon.KeyLength < 16 {
			return nil, ErrArgon2Settings
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, opts.Scheme)
	}

	return h, nil
}

// Pepper mixes secret with the server-wide pepper. The output is deterministic
// and short enough to stay under bcrypt's 72-byte input limit.
func (h *Hasher) Pepper(secret string) string {
	key := argon2.IDKey([]byte(secret), h.pepper, pepperTime, pepperMemory, pepperThreads, pepperKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Hash returns the adaptive hash of the peppered secret. Two calls with the
// same secret produce different strings.
func (h *Hasher) Hash(secret string) (string, error) {
	defer observe("hash", time.Now())

	peppered := h.Pepper(secret)

	switch h.scheme {
	case SchemeArgon2id:
		return h.hashArgon2(peppered)
	default:
		out, err := bcrypt.GenerateFromPassword([]byte(peppered), h.cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(out), nil
	}
}

// Verify reports whether candidate matches hashed. The scheme is taken from
// the encoded hash, so records written under a previous HASHING_SCHEME keep
// verifying after the setting changes.
func (h *Hasher) Verify(hashed, candidate string) bool {
	defer observe("verify", time.Now())

	peppered := h.Pepper(candidate)

	switch {
	case strings.HasPrefix(hashed, argon2Prefix):
		ok, err := verifyArgon2(hashed, peppered)
		return err == nil && ok
	case strings.HasPrefix(hashed, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(peppered)) == nil
	default:
		return false
	}
}

func (h *Hasher) hashArgon2(peppered string) (string, error) {
	salt := make([]byte, h.argon.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}

	key := argon2.IDKey([]byte(peppered), salt, h.argon.Time, h.argon.Memory, h.argon.Parallelism, h.argon.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		h.argon.Memory,
		h.argon.Time,
		h.argon.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2 parses a PHC string: $argon2id$v=19$m=..,t=..,p=..$salt$hash
func verifyArgon2(encoded, peppered string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, ErrInvalidPHC
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidPHC
	}

	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrInvalidPHC
	}
	if memory == 0 || iterations == 0 || threads == 0 {
		return false, ErrInvalidPHC
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidPHC
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrInvalidPHC
	}

	got := argon2.IDKey([]byte(peppered), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func observe(op string, start time.Time) {
	metrics.HashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
