package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
	"github.com/pomodoro-hub/auth-service/internal/pkg/metrics"
)

// AccessGuard resolves bearer tokens to account profiles.
type AccessGuard struct {
	codec ports.TokenCodec
	store ports.CredentialStore
	log   zerolog.Logger
}

func NewAccessGuard(codec ports.TokenCodec, store ports.CredentialStore, log zerolog.Logger) *AccessGuard {
	return &AccessGuard{codec: codec, store: store, log: log}
}

// ResolvePrincipal accepts either "Bearer <token>" or a bare token. Every
// token or subject problem is reported as domain.ErrUnauthenticated; only a
// failing store surfaces as a different error.
func (g *AccessGuard) ResolvePrincipal(ctx context.Context, bearer string) (*domain.Credential, error) {
	token, ok := stripScheme(bearer)
	if !ok {
		return nil, g.reject("invalid_token")
	}

	claims, err := g.codec.Decode(token)
	if err != nil {
		g.log.Debug().Err(err).Msg("bearer token rejected")
		return nil, g.reject("invalid_token")
	}

	subject, _ := claims[domain.ClaimSubject].(string)
	if subject == "" {
		return nil, g.reject("missing_subject")
	}

	profile, err := g.store.FindProfile(ctx, subject)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, g.reject("unknown_subject")
	case err != nil:
		metrics.TokenValidationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	return profile, nil
}

// RequireActive rejects deactivated accounts.
func (g *AccessGuard) RequireActive(principal *domain.Credential) error {
	if principal == nil || !principal.IsActive {
		return g.reject("inactive")
	}
	return nil
}

func (g *AccessGuard) reject(result string) error {
	metrics.TokenValidationsTotal.WithLabelValues(result).Inc()
	return domain.ErrUnauthenticated
}

func stripScheme(bearer string) (string, bool) {
	parts := strings.Fields(bearer)
	switch len(parts) {
	case 1:
		return parts[0], true
	case 2:
		if !strings.EqualFold(parts[0], domain.TokenTypeBearer) {
			return "", false
		}
		return parts[1], true
	default:
		return "", false
	}
}
