package ports

import (
	"context"
	"time"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsActive bool
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.AuthToken, error)
	ChangePassword(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error
	Register(ctx context.Context, in RegisterInput) (*domain.Credential, error)
}

// PrincipalResolver turns a bearer token into the account it was issued for.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, bearer string) (*domain.Credential, error)
	RequireActive(principal *domain.Credential) error
}

// SecretHasher peppers and adaptively hashes secrets for storage.
type SecretHasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether candidate matches hashed. A mismatch or an
	// unparseable hash is reported as false, never as an error.
	Verify(hashed, candidate string) bool
}

// TokenCodec mints and validates signed, time-limited claim sets.
type TokenCodec interface {
	Issue(subject string) (string, error)
	Encode(claims map[string]any, ttl time.Duration) (string, error)
	// Decode verifies signature, structure and expiry and returns the claims.
	// Any failure is reported as domain.ErrInvalidToken.
	Decode(token string) (map[string]any, error)
}
