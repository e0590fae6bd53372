package ports

import (
	"context"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
