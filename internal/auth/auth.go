// Package auth provides moderator authentication.
// This file defines the public API of the auth bounded context.
package auth

import (
	"github.com/google/uuid"
)

// Profile is the signed-in account as other domains see it.
type Profile struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}
