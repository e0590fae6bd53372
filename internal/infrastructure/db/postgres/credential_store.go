package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// CredentialStore implements ports.AccountRepository on the users table.
// SaveHashedPassword is a single-row UPDATE, serialised by the row lock.
type CredentialStore struct {
	db DBTX
}

func NewCredentialStore(db DBTX) *CredentialStore {
	return &CredentialStore{db: db}
}

func (r *CredentialStore) Create(ctx context.Context, user *domain.Credential) (*domain.Credential, error) {
	query :=
		`INSERT INTO users (username, email, hashed_password, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	created := *user
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.HashedPassword, user.IsActive, user.CreatedAt, user.UpdatedAt).
		Scan(&created.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &created, nil
}

func (r *CredentialStore) FindHashedPassword(ctx context.Context, username string) (string, error) {
	query := `SELECT hashed_password FROM users WHERE username = $1`

	var hash string
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash, nil
}

func (r *CredentialStore) FindProfile(ctx context.Context, username string) (*domain.Credential, error) {
	query :=
		`SELECT id, username, email, is_active, created_at, updated_at FROM users
		 WHERE username = $1`

	u := &domain.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *CredentialStore) SaveHashedPassword(ctx context.Context, username, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = now() WHERE username = $2`

	res, err := r.db.ExecContext(ctx, query, hashedPassword, username)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks connectivity for the readiness probe.
func (r *CredentialStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
