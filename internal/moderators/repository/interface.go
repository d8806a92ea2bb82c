package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Moderator is a back-office account.
type Moderator struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// CreateParams contains data for creating an account.
type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// Repository defines moderator storage operations.
type Repository interface {
	List(ctx context.Context) ([]Moderator, error)
	GetByID(ctx context.Context, id uuid.UUID) (Moderator, error)
	// Create returns a Conflict error when the email is taken.
	Create(ctx context.Context, params CreateParams) (Moderator, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (Moderator, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CountAdmins counts admin accounts, optionally only the active ones.
	CountAdmins(ctx context.Context, activeOnly bool) (int, error)
}
