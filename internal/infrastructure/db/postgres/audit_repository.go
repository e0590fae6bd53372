package postgres

import (
	"context"
	"fmt"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	query :=
		`INSERT INTO auth_events (id, username, kind, reason, occurred_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Username, string(event.Kind), event.Reason, event.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
