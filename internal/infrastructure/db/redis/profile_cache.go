package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
	"github.com/pomodoro-hub/auth-service/internal/pkg/metrics"
)

const defaultProfileTTL = 30 * time.Second

// ProfileCache decorates an AccountRepository with a read-through cache for
// profiles. Password hashes are always read from the backing store.
// Key format: profile:<username>
type ProfileCache struct {
	ports.AccountRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewProfileCache wraps store. A non-positive ttl selects defaultProfileTTL.
func NewProfileCache(store ports.AccountRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{AccountRepository: store, client: client, ttl: ttl, log: log}
}

// FindProfile serves from Redis when possible. Redis failures are logged and
// the lookup falls through to the store.
func (c *ProfileCache) FindProfile(ctx context.Context, username string) (*domain.Credential, error) {
	raw, err := c.client.Get(ctx, c.key(username)).Bytes()
	switch {
	case err == nil:
		var profile domain.Credential
		if jsonErr := json.Unmarshal(raw, &profile); jsonErr == nil {
			metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
			return &profile, nil
		}
		metrics.ProfileCacheTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.ProfileCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("username", username).Msg("profile cache read failed")
	}

	profile, err := c.AccountRepository.FindProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		if err := c.client.Set(ctx, c.key(username), payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("profile cache write failed")
		}
	}
	return profile, nil
}

// SaveHashedPassword writes through to the store and evicts the cached
// profile so updated_at is not served stale.
func (c *ProfileCache) SaveHashedPassword(ctx context.Context, username, hashedPassword string) error {
	if err := c.AccountRepository.SaveHashedPassword(ctx, username, hashedPassword); err != nil {
		return err
	}
	c.Evict(ctx, username)
	return nil
}

// Evict drops the cached profile for username.
func (c *ProfileCache) Evict(ctx context.Context, username string) {
	if err := c.client.Del(ctx, c.key(username)).Err(); err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("profile cache eviction failed")
	}
}

// Ping checks Redis connectivity for the readiness probe.
func (c *ProfileCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ProfileCache) key(username string) string {
	return "profile:" + username
}
