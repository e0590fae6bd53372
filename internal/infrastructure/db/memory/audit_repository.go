package memory

import (
	"context"
	"sync"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// AuditRepository appends audit events to a slice.
type AuditRepository struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) InsertEvent(_ context.Context, event *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *AuditRepository) Events() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEvent, len(r.events))
	copy(out, r.events)
	return out
}
