package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Roles carried in the access token.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Identity is the caller as handlers see it, without gin types.
type Identity interface {
	UserID() uuid.UUID
	HasRole(role string) bool
	// IsAdmin decides whether a caller may act on records assigned to
	// other moderators.
	IsAdmin() bool
}

type caller struct {
	id    uuid.UUID
	roles []string
}

func (c caller) UserID() uuid.UUID        { return c.id }
func (c caller) HasRole(role string) bool { return slices.Contains(c.roles, role) }
func (c caller) IsAdmin() bool            { return c.HasRole(RoleAdmin) }

// GetIdentity returns the caller stored by AuthRequired, or false when the
// request was not authenticated.
func GetIdentity(c *gin.Context) (Identity, bool) {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return nil, false
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return nil, false
	}
	roles, _ := c.Get(ContextRolesKey)
	list, _ := roles.([]string)
	return caller{id: id, roles: list}, true
}

// MustGetIdentity returns the caller or aborts with 401 and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
