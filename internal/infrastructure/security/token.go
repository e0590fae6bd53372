package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

var ErrUnsupportedAlgorithm = errors.New("signing algorithm must be HS256, HS384 or HS512")

// TokenCodec signs and validates JWTs with a symmetric key.
type TokenCodec struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the time source used for both minting and validation.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec for an HMAC algorithm. ttl is the lifetime
// given to tokens minted by Issue.
func NewTokenCodec(key, algorithm string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if key == "" {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	c := &TokenCodec{key: []byte(key), method: method, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL is the configured lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue mints a token whose only caller-supplied claim is the subject.
func (c *TokenCodec) Issue(subject string) (string, error) {
	return c.Encode(map[string]any{domain.ClaimSubject: subject}, c.ttl)
}

// Encode signs claims after stamping exp = now + ttl and iat = now. A zero
// or negative ttl yields a token that is already expired.
func (c *TokenCodec) Encode(claims map[string]any, ttl time.Duration) (string, error) {
	now := c.now().UTC()

	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc[domain.ClaimExpiresAt] = now.Add(ttl).Unix()
	mc[domain.ClaimIssuedAt] = now.Unix()

	signed, err := jwt.NewWithClaims(c.method, mc).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode returns the claims of a token signed by this codec. The algorithm is
// pinned to the configured one and exp is mandatory.
func (c *TokenCodec) Decode(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
