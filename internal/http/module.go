package http

import (
	"byabshik_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that owns a set of routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands each module the route groups it mounts on.
//
//	V1         /api/v1, no authentication
//	Protected  /api/v1, any signed-in admin or moderator
//	Admin      /api/v1/admin, admins only
type RouterContext struct {
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup

	// AuthRateLimiter throttles login attempts per client IP.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
