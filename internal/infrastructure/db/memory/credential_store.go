// Package memory provides process-local implementations of the storage ports,
// used by tests and by STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// CredentialStore keeps accounts in a map keyed by username.
type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{users: make(map[string]domain.Credential)}
}

func (s *CredentialStore) Create(_ context.Context, user *domain.Credential) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, domain.ErrConflict
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.users[stored.Username] = stored

	out := stored
	return &out, nil
}

func (s *CredentialStore) FindHashedPassword(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return "", domain.ErrNotFound
	}
	return u.HashedPassword, nil
}

func (s *CredentialStore) FindProfile(_ context.Context, username string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *CredentialStore) SaveHashedPassword(_ context.Context, username, hashedPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return domain.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	u.UpdatedAt = time.Now().UTC()
	s.users[username] = u
	return nil
}

// SetActive flips the active flag. It backs administrative tooling and tests;
// the HTTP surface has no route for it.
func (s *CredentialStore) SetActive(_ context.Context, username string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	s.users[username] = u
	return nil
}

// Ping satisfies the readiness check contract.
func (s *CredentialStore) Ping(context.Context) error { return nil }
