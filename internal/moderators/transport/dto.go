// Package transport holds the request and response shapes of the moderators API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateModeratorRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin moderator"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type ModeratorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type ModeratorListResponse struct {
	Items []ModeratorResponse `json:"items"`
}
