// Package moderators provides the back-office accounts module.
package moderators

import (
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/moderators/handler"
	"byabshik_backend/internal/moderators/repository"
	"byabshik_backend/internal/moderators/service"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the moderators module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the moderators module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "moderators"
}

// Service returns the service for the bootstrap step and the lead directory.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts moderator routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/moderators")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.PATCH("/:id/active", m.handler.SetActive)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
