package ports

import (
	"context"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// CredentialStore is the persistence capability the authentication core depends on.
// Every lookup is keyed by username and returns domain.ErrNotFound on a miss.
//
// ChangePassword performs read-verify-write across FindHashedPassword and
// SaveHashedPassword without its own locking; implementations must apply
// SaveHashedPassword as a single-row atomic write.
type CredentialStore interface {
	FindHashedPassword(ctx context.Context, username string) (string, error)
	FindProfile(ctx context.Context, username string) (*domain.Credential, error)
	// SaveHashedPassword replaces the stored hash and nothing else. It returns
	// domain.ErrConflict when the write violates an integrity constraint.
	SaveHashedPassword(ctx context.Context, username, hashedPassword string) error
}

// AccountRepository adds account creation on top of CredentialStore.
type AccountRepository interface {
	CredentialStore
	// Create inserts a new account and returns it with its assigned ID.
	// Duplicate username or email yields domain.ErrConflict.
	Create(ctx context.Context, user *domain.Credential) (*domain.Credential, error)
}
