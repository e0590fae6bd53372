package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pomodoro-hub/auth-service/internal/api/handler"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
	"github.com/pomodoro-hub/auth-service/internal/infrastructure/db/memory"
	mongostore "github.com/pomodoro-hub/auth-service/internal/infrastructure/db/mongo"
	"github.com/pomodoro-hub/auth-service/internal/infrastructure/db/postgres"
	rediscache "github.com/pomodoro-hub/auth-service/internal/infrastructure/db/redis"
	"github.com/pomodoro-hub/auth-service/internal/pkg/config"
	"github.com/pomodoro-hub/auth-service/pkg/logger"
)

// backend bundles the storage selected by STORE_DRIVER with the optional
// profile cache.
type backend struct {
	accounts ports.AccountRepository
	audit    ports.AuditRepository
	health   map[string]handler.Pinger
	closers  []func(context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{health: make(map[string]handler.Pinger)}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "auth-service",
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)

		store := mongostore.NewCredentialStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			b.close(logger.Get())
			return nil, err
		}
		b.accounts = store
		b.audit = mongostore.NewAuditRepository(db)
		b.health["mongodb"] = store

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })

		if err := postgres.EnsureSchema(ctx, db); err != nil {
			b.close(logger.Get())
			return nil, err
		}
		store := postgres.NewCredentialStore(db)
		b.accounts = store
		b.audit = postgres.NewAuditRepository(db)
		b.health["postgres"] = store

	case config.DriverMemory:
		store := memory.NewCredentialStore()
		b.accounts = store
		b.audit = memory.NewAuditRepository()
		b.health["memory"] = store

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.Redis.Addr != "" && cfg.ProfileCacheTTL > 0 {
		log := logger.Named("profile_cache")
		client, err := rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, profile cache disabled")
			return b, nil
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })

		cache := rediscache.NewProfileCache(b.accounts, client, cfg.ProfileCacheTTL, log)
		b.accounts = cache
		b.health["redis"] = cache
	}

	return b, nil
}

// close releases connections in reverse order of acquisition.
func (b *backend) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("closing backend connection")
		}
	}
	b.closers = nil
}
