package repository

import (
	"context"
	"time"

	"byabshik_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Repository is the persistence contract for leads.
type Repository interface {
	// ListAll returns every lead, newest first.
	ListAll(ctx context.Context) ([]domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	// LatestByPhone returns the newest lead for a normalized phone, or nil.
	LatestByPhone(ctx context.Context, phone string) (*domain.Lead, error)
	// ListForModerator returns a moderator's leads. A nil day returns all of
	// them; otherwise only leads assigned for that date.
	ListForModerator(ctx context.Context, moderatorID uuid.UUID, day *time.Time) ([]domain.Lead, error)

	// ReassignMany moves the given leads to a moderator in one statement and
	// resets them to pending.
	ReassignMany(ctx context.Context, ids []uuid.UUID, moderatorID uuid.UUID, assignedDate time.Time) (int64, error)
	// InsertMany writes new leads in one round trip.
	InsertMany(ctx context.Context, leads []domain.Lead) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
