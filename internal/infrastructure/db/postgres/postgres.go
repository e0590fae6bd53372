// Package postgres stores credentials and the audit trail in PostgreSQL
// through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultTimeout = 10 * time.Second

// DBTX is the subset of *sql.DB used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PingContext(ctx context.Context) error
}

type Config struct {
	DSN          string
	MaxOpenConns int
	Timeout      time.Duration
}

// Open returns a pooled connection verified with a ping.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS auth_events (
	id          UUID PRIMARY KEY,
	username    TEXT NOT NULL,
	kind        TEXT NOT NULL,
	reason      TEXT,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS auth_events_username_idx ON auth_events (username, occurred_at);
`

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
