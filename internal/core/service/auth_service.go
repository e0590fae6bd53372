package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
	"github.com/pomodoro-hub/auth-service/internal/pkg/metrics"
)

// AuthService implements login, password rotation and registration.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.SecretHasher
	codec  ports.TokenCodec
	audit  ports.AuditSink
	log    zerolog.Logger

	// decoy is verified against when the username is unknown so that both
	// failure paths pay for one hash verification.
	decoy string
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.SecretHasher,
	codec ports.TokenCodec,
	audit ports.AuditSink,
	log zerolog.Logger,
) (*AuthService, error) {
	if audit == nil {
		audit = discardAudit{}
	}
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}
	return &AuthService{repo: repo, hasher: hasher, codec: codec, audit: audit, log: log, decoy: decoy}, nil
}

// Authenticate verifies the username/password pair and mints a bearer token.
// Unknown usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.AuthToken, error) {
	if username == "" || password == "" {
		return nil, s.loginFailed(username, "empty_field")
	}

	hashed, err := s.repo.FindHashedPassword(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.hasher.Verify(s.decoy, password)
		return nil, s.loginFailed(username, "unknown_user")
	case err != nil:
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate: lookup hash: %w", err)
	}

	if !s.hasher.Verify(hashed, password) {
		return nil, s.loginFailed(username, "wrong_password")
	}

	token, err := s.codec.Issue(username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.record(username, domain.EventLoginSucceeded, "")
	s.log.Info().Str("username", username).Msg("login succeeded")

	return &domain.AuthToken{AccessToken: token, TokenType: domain.TokenTypeBearer}, nil
}

// ChangePassword replaces the password of current after re-verifying the old one.
//
// Order of checks:
//  1. new == old            → domain.ErrInvalidArgument, nothing is read or written
//  2. new outside 6..40     → domain.ErrInvalidArgument
//  3. old does not verify   → domain.ErrInvalidCredentials
//  4. store rejects write   → domain.ErrConflict (propagated)
func (s *AuthService) ChangePassword(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error {
	if current == nil {
		return domain.ErrUnauthenticated
	}
	username := current.Username

	if req.NewPassword == req.OldPassword {
		return s.changeRejected(username, "invalid_argument",
			fmt.Errorf("%w: new password must differ from the old one", domain.ErrInvalidArgument))
	}
	if !domain.ValidPassword(req.NewPassword) {
		return s.changeRejected(username, "invalid_argument",
			fmt.Errorf("%w: password must be %d-%d characters", domain.ErrInvalidArgument, domain.PasswordMinLen, domain.PasswordMaxLen))
	}

	hashed, err := s.repo.FindHashedPassword(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.changeRejected(username, "invalid_credentials", domain.ErrInvalidCredentials)
	case err != nil:
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: lookup hash: %w", err)
	}

	if !s.hasher.Verify(hashed, req.OldPassword) {
		return s.changeRejected(username, "invalid_credentials", domain.ErrInvalidCredentials)
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.repo.SaveHashedPassword(ctx, username, newHash); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.changeRejected(username, "conflict", err)
		}
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("username", username).Msg("failed to save password hash")
		return fmt.Errorf("change password: %w", err)
	}

	metrics.PasswordChangesTotal.WithLabelValues("success").Inc()
	s.record(username, domain.EventPasswordChanged, "")
	s.log.Info().Str("username", username).Msg("password changed")
	return nil
}

// Register creates a new account with a freshly hashed password.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
	if !domain.ValidUsername(in.Username) {
		return nil, fmt.Errorf("%w: malformed username", domain.ErrInvalidArgument)
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
	}
	if !domain.ValidPassword(in.Password) {
		return nil, fmt.Errorf("%w: password must be %d-%d characters", domain.ErrInvalidArgument, domain.PasswordMinLen, domain.PasswordMaxLen)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Credential{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.log.Error().Err(err).Str("username", in.Username).Msg("failed to create user")
		}
		return nil, err
	}

	s.record(created.Username, domain.EventUserRegistered, "")
	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) loginFailed(username, reason string) error {
	username = boundedUsername(username)
	metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
	s.record(username, domain.EventLoginFailed, reason)
	s.log.Info().Str("username", username).Str("reason", reason).Msg("login failed")
	return domain.ErrInvalidCredentials
}

func (s *AuthService) changeRejected(username, result string, err error) error {
	metrics.PasswordChangesTotal.WithLabelValues(result).Inc()
	s.record(username, domain.EventPasswordChangeRejected, result)
	s.log.Info().Str("username", username).Str("reason", result).Msg("password change rejected")
	return err
}

func (s *AuthService) record(username string, kind domain.AuthEventKind, reason string) {
	s.audit.Enqueue(domain.AuthEvent{
		ID:         uuid.NewString(),
		Username:   username,
		Kind:       kind,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

// boundedUsername caps caller-supplied usernames before they reach logs and
// the audit trail.
func boundedUsername(username string) string {
	if len(username) <= domain.UsernameMaxLen {
		return username
	}
	n := 0
	for i := range username {
		if n == domain.UsernameMaxLen {
			return username[:i] + "...(truncated)"
		}
		n++
	}
	return username
}

type discardAudit struct{}

func (discardAudit) Enqueue(domain.AuthEvent) {}
