// Package products provides the product catalog module.
package products

import (
	apphttp "byabshik_backend/internal/http"
	"byabshik_backend/internal/products/handler"
	"byabshik_backend/internal/products/repository"
	"byabshik_backend/internal/products/service"
	"byabshik_backend/platform/logger"
	"byabshik_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the products module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the products module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "products"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts product routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Read-only for every signed-in account
	ctx.Protected.GET("/products", m.handler.List)
	ctx.Protected.GET("/products/:id", m.handler.GetByID)

	// Admin CRUD endpoints
	adminGroup := ctx.Admin.Group("/products")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
