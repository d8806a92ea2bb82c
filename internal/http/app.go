// Package http wires domain modules onto the gin engine.
package http

import (
	"context"

	"byabshik_backend/platform/config"
	"byabshik_backend/platform/logger"
)

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by cmd/api and consumed by router.New. A nil Health
// makes /api/health report ok without touching the database.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
